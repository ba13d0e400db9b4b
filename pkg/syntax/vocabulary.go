package syntax

import (
	"fmt"
	"sort"
)

// Spelling pairs the surface text of a catalog entry with its code.
type Spelling[C ~int] struct {
	Text string
	Code C
}

// Vocabulary is one complete set of lexical catalogs.
//
// Tables are searched in order, first match wins. Two separators may share a
// spelling (English writes both parameter and expression brackets as "(" and
// ")"); the lexer then emits the first one listed and the parser compares
// separators through Canonical.
type Vocabulary struct {
	Name        string
	Declarators []Spelling[Declarator]
	Keywords    []Spelling[Keyword]
	Operators   []Spelling[Operator]
	Separators  []Spelling[Separator]
	Fillers     []string // lexemes dropped by the lexer
	Comment     string   // a lexeme starting with this skips the rest of the line
}

func lookup[C ~int](table []Spelling[C], text string) (C, bool) {
	for _, s := range table {
		if s.Text == text {
			return s.Code, true
		}
	}
	return 0, false
}

func spell[C ~int](table []Spelling[C], code C) (string, bool) {
	for _, s := range table {
		if s.Code == code {
			return s.Text, true
		}
	}
	return "", false
}

func (v *Vocabulary) LookupDeclarator(text string) (Declarator, bool) {
	return lookup(v.Declarators, text)
}

func (v *Vocabulary) LookupKeyword(text string) (Keyword, bool) {
	return lookup(v.Keywords, text)
}

func (v *Vocabulary) LookupOperator(text string) (Operator, bool) {
	return lookup(v.Operators, text)
}

func (v *Vocabulary) LookupSeparator(text string) (Separator, bool) {
	return lookup(v.Separators, text)
}

func (v *Vocabulary) SpellDeclarator(d Declarator) (string, bool) {
	return spell(v.Declarators, d)
}

func (v *Vocabulary) SpellKeyword(k Keyword) (string, bool) {
	return spell(v.Keywords, k)
}

func (v *Vocabulary) SpellOperator(o Operator) (string, bool) {
	return spell(v.Operators, o)
}

func (v *Vocabulary) SpellSeparator(s Separator) (string, bool) {
	return spell(v.Separators, s)
}

// IsFiller reports whether lexeme is one of the words the lexer discards.
func (v *Vocabulary) IsFiller(lexeme string) bool {
	for _, f := range v.Fillers {
		if f == lexeme {
			return true
		}
	}
	return false
}

// Canonical returns the separator the lexer emits for the spelling of s.
// Separators without a spelling are their own canonical form.
func (v *Vocabulary) Canonical(s Separator) Separator {
	text, ok := v.SpellSeparator(s)
	if !ok {
		return s
	}
	c, _ := v.LookupSeparator(text)
	return c
}

// Validate checks that every table has unique codes and that no text is
// claimed by two different tables.
func (v *Vocabulary) Validate() error {
	owner := make(map[string]string)
	claim := func(table, text string) error {
		if text == "" {
			return fmt.Errorf("vocabulary %s: empty spelling in %s table", v.Name, table)
		}
		if prev, ok := owner[text]; ok && prev != table {
			return fmt.Errorf("vocabulary %s: %q appears in both %s and %s tables", v.Name, text, prev, table)
		}
		owner[text] = table
		return nil
	}
	for _, s := range v.Declarators {
		if err := claim("declarator", s.Text); err != nil {
			return err
		}
	}
	for _, s := range v.Keywords {
		if err := claim("keyword", s.Text); err != nil {
			return err
		}
	}
	for _, s := range v.Operators {
		if err := claim("operator", s.Text); err != nil {
			return err
		}
	}
	for _, s := range v.Separators {
		if err := claim("separator", s.Text); err != nil {
			return err
		}
	}
	for _, f := range v.Fillers {
		if err := claim("filler", f); err != nil {
			return err
		}
	}
	if v.Comment == "" {
		return fmt.Errorf("vocabulary %s: no comment marker", v.Name)
	}
	return nil
}

var registry = map[string]*Vocabulary{}

// Register makes v available to Lookup under v.Name.
func Register(v *Vocabulary) {
	registry[v.Name] = v
}

// Lookup returns the registered vocabulary called name.
func Lookup(name string) (*Vocabulary, error) {
	v, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown vocabulary %q (have %v)", name, Names())
	}
	return v, nil
}

// Names lists the registered vocabularies in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(English)
	Register(Lecture)
}

// Package syntax holds the lexical catalogs of the language: the typed codes
// for declarators, keywords, operators and separators, and the vocabularies
// that spell them.
//
// The lexer and parser only ever see codes. A Vocabulary maps surface text to
// codes, so the spelling of the language can change without touching either.
package syntax

import "fmt"

// Declarator introduces a function or variable definition.
type Declarator int

const (
	FuncDecl Declarator = iota
	VarDecl
)

var declaratorNames = [...]string{
	FuncDecl: "Func",
	VarDecl:  "Var",
}

func (d Declarator) String() string {
	if int(d) >= 0 && int(d) < len(declaratorNames) {
		return declaratorNames[d]
	}
	return fmt.Sprintf("Declarator(%d)", int(d))
}

// Keyword identifies a statement keyword.
type Keyword int

const (
	If Keyword = iota
	Else
	While
	Return
	Scan
	Print
)

var keywordNames = [...]string{
	If:     "If",
	Else:   "Else",
	While:  "While",
	Return: "Return",
	Scan:   "Scan",
	Print:  "Print",
}

func (k Keyword) String() string {
	if int(k) >= 0 && int(k) < len(keywordNames) {
		return keywordNames[k]
	}
	return fmt.Sprintf("Keyword(%d)", int(k))
}

// Operator identifies an arithmetic, comparison or assignment operator.
type Operator int

const (
	Add Operator = iota
	Sub
	Mul
	Div
	Less
	More
	LessEqual
	MoreEqual
	Equal
	NotEqual
	Assign
	Sqrt
)

var operatorNames = [...]string{
	Add:       "Add",
	Sub:       "Sub",
	Mul:       "Mul",
	Div:       "Div",
	Less:      "Less",
	More:      "More",
	LessEqual: "LessEqual",
	MoreEqual: "MoreEqual",
	Equal:     "Equal",
	NotEqual:  "NotEqual",
	Assign:    "Assign",
	Sqrt:      "Sqrt",
}

func (o Operator) String() string {
	if int(o) >= 0 && int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// IsArithmetic reports whether o is one of + - * /.
func (o Operator) IsArithmetic() bool {
	return o == Add || o == Sub || o == Mul || o == Div
}

// IsComparison reports whether o is one of the six comparison operators.
func (o Operator) IsComparison() bool {
	return o >= Less && o <= NotEqual
}

// Separator identifies punctuation: statement ends, brackets and the condition arrow.
type Separator int

const (
	EndLine Separator = iota
	BeginParams
	EndParams
	BeginExpr
	EndExpr
	BeginBody
	EndBody
	EndCondition
)

var separatorNames = [...]string{
	EndLine:      "EndLine",
	BeginParams:  "BeginParams",
	EndParams:    "EndParams",
	BeginExpr:    "BeginExpr",
	EndExpr:      "EndExpr",
	BeginBody:    "BeginBody",
	EndBody:      "EndBody",
	EndCondition: "EndCondition",
}

func (s Separator) String() string {
	if int(s) >= 0 && int(s) < len(separatorNames) {
		return separatorNames[s]
	}
	return fmt.Sprintf("Separator(%d)", int(s))
}

// byName resolves a code from its String() name.
func byName[C ~int](names []string, name string) (C, bool) {
	for i, n := range names {
		if n == name {
			return C(i), true
		}
	}
	return 0, false
}

// DeclaratorByName returns the declarator whose String() is name.
func DeclaratorByName(name string) (Declarator, bool) {
	return byName[Declarator](declaratorNames[:], name)
}

// KeywordByName returns the keyword whose String() is name.
func KeywordByName(name string) (Keyword, bool) {
	return byName[Keyword](keywordNames[:], name)
}

// OperatorByName returns the operator whose String() is name.
func OperatorByName(name string) (Operator, bool) {
	return byName[Operator](operatorNames[:], name)
}

// SeparatorByName returns the separator whose String() is name.
func SeparatorByName(name string) (Separator, bool) {
	return byName[Separator](separatorNames[:], name)
}

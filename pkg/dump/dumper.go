package dump

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"image/png"
	"strconv"
	"strings"
	"time"

	"lectern/pkg/ast"
	"lectern/pkg/dumpfs"
	"lectern/pkg/syntax"
)

// LogName is the HTML log every dump is appended to.
const LogName = "log.html"

// Dumper writes numbered snapshots of trees into a store. Each Dump call
// produces dumpNNNN.dot and dumpNNNN.png and appends an entry to log.html.
// Trees too large to draw get the .dot file and a log entry without a picture.
type Dumper struct {
	store *dumpfs.Store
	vocab *syntax.Vocabulary
	first int // highest dump number found in the store
	count int // number of the last dump written
	now   func() time.Time
}

// NewDumper numbers its dumps after the highest dumpNNNN already in store, so
// a store loaded from an earlier run keeps its pictures and log entries.
func NewDumper(store *dumpfs.Store, vocab *syntax.Vocabulary) *Dumper {
	d := &Dumper{store: store, vocab: vocab, now: time.Now}
	for _, name := range store.List() {
		if n, ok := dumpNumber(name); ok && n > d.first {
			d.first = n
		}
	}
	d.count = d.first
	return d
}

func dumpNumber(name string) (int, bool) {
	stem, _, _ := strings.Cut(name, ".")
	digits, ok := strings.CutPrefix(stem, "dump")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	return n, err == nil && n >= 0
}

// Count is the number of dumps written by this Dumper.
func (d *Dumper) Count() int { return d.count - d.first }

// Dump snapshots tree under title and returns the dump number.
func (d *Dumper) Dump(tree *ast.Tree, title string) (int, error) {
	id := d.count + 1
	base := fmt.Sprintf("dump%04d", id)

	if err := d.store.Write(base+".dot", []byte(Dot(tree, d.vocab))); err != nil {
		return 0, fmt.Errorf("dump %d: %w", id, err)
	}
	var pic bytes.Buffer
	img, err := Render(tree, d.vocab)
	switch {
	case errors.Is(err, ErrTooLarge):
		tracer().Infof("dump %d: %v", id, err)
	case err != nil:
		return 0, fmt.Errorf("dump %d: %w", id, err)
	default:
		if err := png.Encode(&pic, img); err != nil {
			return 0, fmt.Errorf("dump %d: encode png: %w", id, err)
		}
		if err := d.store.Write(base+".png", pic.Bytes()); err != nil {
			return 0, fmt.Errorf("dump %d: %w", id, err)
		}
	}

	var entry bytes.Buffer
	fmt.Fprintf(&entry, "<pre>\n<hr>\n<font size=\"6\">%s</font>\n", html.EscapeString(title))
	fmt.Fprintf(&entry, "dump %d at %s, %d nodes, depth %d\n",
		id, d.now().Format("2006-01-02 15:04:05"), tree.Root.Size(), tree.Root.Depth())
	entry.WriteString(html.EscapeString(tree.Names.String()))
	if img != nil {
		fmt.Fprintf(&entry, "<img src=\"%s.png\">\n</pre>\n", base)
	} else {
		fmt.Fprintf(&entry, "(%s, see <a href=\"%s.dot\">%s.dot</a>)\n</pre>\n", html.EscapeString(err.Error()), base, base)
	}
	if err := d.store.Append(LogName, entry.Bytes()); err != nil {
		return 0, fmt.Errorf("dump %d: %w", id, err)
	}

	d.count = id
	tracer().Infof("dump %d: %s (%d bytes of png)", id, title, pic.Len())
	return id, nil
}

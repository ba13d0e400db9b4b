package dump

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"lectern/pkg/ast"
	"lectern/pkg/syntax"
)

const (
	maxLabelRunes = 16
	boxPadding    = 6
	boxHeight     = 22
	rowGap        = 28
	margin        = 10

	// MaxPixels caps the picture at 64 MB of RGBA.
	MaxPixels = 1 << 24
)

// ErrTooLarge is returned by Render when the layout needs more than MaxPixels.
var ErrTooLarge = errors.New("picture too large")

// Placement is where Layout puts one node: in-order column and depth row.
type Placement struct {
	Node *ast.Node
	Col  int
	Row  int
}

// Layout assigns each node its own column in in-order sequence and a row
// equal to its depth, so parents sit between their left and right subtrees.
func Layout(root *ast.Node) []Placement {
	var out []Placement
	col := 0
	var visit func(n *ast.Node, depth int)
	visit = func(n *ast.Node, depth int) {
		if n == nil {
			return
		}
		visit(n.Left, depth+1)
		out = append(out, Placement{Node: n, Col: col, Row: depth})
		col++
		visit(n.Right, depth+1)
	}
	visit(root, 0)
	return out
}

func clip(label string) string {
	r := []rune(label)
	if len(r) <= maxLabelRunes {
		return label
	}
	return string(r[:maxLabelRunes-1]) + "~"
}

// Render draws tree as boxes coloured by kind, joined by edges from each
// parent to its children. An empty tree yields a small blank image. Trees
// whose layout exceeds MaxPixels are not drawn.
func Render(tree *ast.Tree, vocab *syntax.Vocabulary) (*image.RGBA, error) {
	face := basicfont.Face7x13
	placed := Layout(tree.Root)

	labels := make(map[*ast.Node]string, len(placed))
	cellW, rows := 0, 0
	for _, p := range placed {
		l := clip(Label(tree, vocab, p.Node))
		labels[p.Node] = l
		cellW = max(cellW, font.MeasureString(face, l).Ceil()+2*boxPadding)
		rows = max(rows, p.Row+1)
	}
	cellW += boxPadding

	w := max(2*margin+len(placed)*cellW, 2*margin+1)
	h := max(2*margin+rows*(boxHeight+rowGap), 2*margin+1)
	if w*h > MaxPixels {
		return nil, fmt.Errorf("%w: %d nodes need %dx%d", ErrTooLarge, len(placed), w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	if len(placed) == 0 {
		return img, nil
	}

	centre := make(map[*ast.Node]image.Point, len(placed))
	for _, p := range placed {
		centre[p.Node] = image.Pt(margin+p.Col*cellW+cellW/2, margin+p.Row*(boxHeight+rowGap)+boxHeight/2)
	}

	edges := vector.NewRasterizer(img.Bounds().Dx(), img.Bounds().Dy())
	for _, p := range placed {
		from := centre[p.Node]
		for _, child := range []*ast.Node{p.Node.Left, p.Node.Right} {
			if child != nil {
				line(edges, from.Add(image.Pt(0, boxHeight/2)), centre[child].Sub(image.Pt(0, boxHeight/2)))
			}
		}
	}
	edges.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: 90}), image.Point{})

	for _, p := range placed {
		label := labels[p.Node]
		c := centre[p.Node]
		bw := font.MeasureString(face, label).Ceil() + 2*boxPadding
		box := image.Rect(c.X-bw/2, c.Y-boxHeight/2, c.X+bw/2+1, c.Y+boxHeight/2)
		draw.Draw(img, box, image.NewUniform(color.Black), image.Point{}, draw.Src)
		draw.Draw(img, box.Inset(1), image.NewUniform(kindColours[p.Node.Kind()].rgb), image.Point{}, draw.Src)

		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.Black),
			Face: face,
			Dot:  fixed.P(box.Min.X+boxPadding, c.Y+face.Ascent/2),
		}
		d.DrawString(label)
	}
	tracer().Debugf("rendered %d nodes into %dx%d", len(placed), img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

// line adds a one-pixel-wide segment from a to b to the rasterizer path.
func line(z *vector.Rasterizer, a, b image.Point) {
	const half = 0.6
	ax, ay, bx, by := float32(a.X), float32(a.Y), float32(b.X), float32(b.Y)
	dx, dy := bx-ax, by-ay
	// Offset perpendicular to the segment, normalised on the larger axis.
	var ox, oy float32
	if abs(dx) > abs(dy) {
		oy = half
	} else {
		ox = half
	}
	z.MoveTo(ax-ox, ay-oy)
	z.LineTo(bx-ox, by-oy)
	z.LineTo(bx+ox, by+oy)
	z.LineTo(ax+ox, ay+oy)
	z.ClosePath()
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"lectern/pkg/ast"
	"lectern/pkg/dump"
	"lectern/pkg/dumpfs"
	"lectern/pkg/frontend"
	"lectern/pkg/syntax"
	"lectern/pkg/utils"
)

const (
	screenWidth  = 960
	screenHeight = 640
	panStep      = 8
)

// treeView is one tree drawn into an offscreen image.
type treeView struct {
	title string
	tree  *ast.Tree
	img   *ebiten.Image
}

type Game struct {
	views   [2]treeView // parsed, simplified
	current int
	vp      viewport
	dumper  *dump.Dumper
	status  string
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.current = 1 - g.current
		g.vp.resize(g.views[g.current].img.Bounds().Dx(), g.views[g.current].img.Bounds().Dy())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v := g.views[g.current]
		if n, err := g.dumper.Dump(v.tree, v.title); err != nil {
			g.status = err.Error()
		} else {
			g.status = fmt.Sprintf("saved dump %d", n)
		}
	}

	dx, dy := 0, 0
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx -= panStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx += panStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy -= panStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy += panStep
	}
	g.vp.pan(dx, dy)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	v := g.views[g.current]
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(-g.vp.x), float64(-g.vp.y))
	screen.DrawImage(v.img, op)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s  [S] switch  [P] save dump  arrows pan\n%s", v.title, g.status))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// startDumpSyncer flushes the dump store to dir every interval while stop is open.
func startDumpSyncer(store *dumpfs.Store, dir string, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if store.Dirty() {
				if err := store.PersistTo(dir); err != nil {
					log.Printf("sync dumps: %v", err)
				}
			}
		case <-stop:
			return
		}
	}
}

func main() {
	vocabName := flag.String("vocab", syntax.English.Name, "vocabulary of the input program")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("usage: viewer [-vocab name] <program>")
	}

	vocab, err := syntax.Lookup(*vocabName)
	if err != nil {
		log.Fatal(err)
	}
	fullPath, _, err := utils.ResolveSource(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	res, err := frontend.CompileFile(fullPath, frontend.Options{Vocab: vocab, Simplify: true})
	if err != nil {
		log.Fatalf("compile: %v", err)
	}

	dir := utils.DumpDir(fullPath)
	store := dumpfs.NewStore(0)
	if err := store.LoadFrom(dir); err != nil {
		log.Fatal(err)
	}

	game := &Game{dumper: dump.NewDumper(store, vocab)}
	game.views[0] = treeView{title: "parsed", tree: res.Raw}
	game.views[1] = treeView{title: "simplified: " + res.Stats.String(), tree: res.Tree}
	for i := range game.views {
		img, err := dump.Render(game.views[i].tree, vocab)
		if err != nil {
			log.Fatalf("render %s tree: %v (use lectern dump for the .dot file)", game.views[i].title, err)
		}
		game.views[i].img = ebiten.NewImageFromImage(img)
	}
	b := game.views[0].img.Bounds()
	game.vp = viewport{w: screenWidth, h: screenHeight}
	game.vp.resize(b.Dx(), b.Dy())

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("lectern: " + flag.Arg(0))

	stop := make(chan struct{})
	go startDumpSyncer(store, dir, 3*time.Second, stop)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}

	close(stop)
	if store.Dirty() {
		if err := store.PersistTo(dir); err != nil {
			log.Fatal(err)
		}
	}
}

// Package view renders a game.World in an ebiten window and turns mouse and
// keyboard input into selection and move orders.
package view

import (
	"fmt"
	"image/color"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Pack-Sense/internal/game"
)

const (
	cellPx     = 16  // pixels per grid cell
	border     = 12  // gap between window edge and map
	panelW     = 380 // thought log panel width
	lineH      = 14
	reportTick = 120 // ticks of history in a copied agent report
)

var speeds = []float64{0.25, 0.5, 1, 2, 4}

// Viewer is an ebiten.Game driving one world.
type Viewer struct {
	world *game.World
	log   *log.Logger
	face  *text.GoXFace

	width, height int
	mapW, mapH    int

	paused    bool
	speedIdx  int
	tickAccum float64

	showBoard bool
	boardTeam game.Team
	showFog   bool
	formation game.FormationType

	prevKeys  map[ebiten.Key]bool
	prevLeft  bool
	prevRight bool

	status      string
	statusUntil int
}

// New builds a viewer sized to w's grid.
func New(w *game.World, logger *log.Logger) *Viewer {
	if logger == nil {
		logger = log.Default()
	}
	g := w.Grid()
	v := &Viewer{
		world:    w,
		log:      logger,
		face:     text.NewGoXFace(basicfont.Face7x13),
		mapW:     g.Cols() * cellPx,
		mapH:     g.Rows() * cellPx,
		speedIdx: 2,
		prevKeys: make(map[ebiten.Key]bool),
	}
	v.width = v.mapW + 2*border + panelW
	v.height = max(v.mapH+2*border+6*lineH, 480)
	return v
}

// WindowSize is the natural window size in pixels.
func (v *Viewer) WindowSize() (int, int) { return v.width, v.height }

// Update handles input and advances the simulation.
func (v *Viewer) Update() error {
	v.handleInput()
	if v.paused {
		return nil
	}
	v.tickAccum += speeds[v.speedIdx]
	for v.tickAccum >= 1 {
		v.tickAccum--
		v.world.Step()
	}
	return nil
}

// Layout reports a fixed logical screen.
func (v *Viewer) Layout(_, _ int) (int, int) { return v.width, v.height }

// keyPressed is an edge-triggered key check.
func (v *Viewer) keyPressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !v.prevKeys[k]
}

func (v *Viewer) handleInput() {
	cur := map[ebiten.Key]bool{}

	if v.keyPressed(cur, ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if v.keyPressed(cur, ebiten.KeyPeriod) && v.speedIdx < len(speeds)-1 {
		v.speedIdx++
	}
	if v.keyPressed(cur, ebiten.KeyComma) && v.speedIdx > 0 {
		v.speedIdx--
	}
	if v.keyPressed(cur, ebiten.KeyN) && v.paused {
		v.world.Step()
	}
	if v.keyPressed(cur, ebiten.KeyB) {
		v.showBoard = !v.showBoard
	}
	if v.keyPressed(cur, ebiten.KeyTab) {
		v.boardTeam = nextTeam(v.boardTeam)
	}
	if v.keyPressed(cur, ebiten.KeyV) {
		v.showFog = !v.showFog
	}
	if v.keyPressed(cur, ebiten.KeyF) {
		v.formation = nextFormation(v.formation)
		v.flash("formation: " + v.formation.String())
	}
	if v.keyPressed(cur, ebiten.KeyC) {
		v.copyReport()
	}
	if v.keyPressed(cur, ebiten.KeyEscape) {
		v.world.ClearSelection()
	}
	v.prevKeys = cur

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !v.prevLeft {
		mx, my := ebiten.CursorPosition()
		if c, ok := v.cellAt(mx, my); ok {
			v.selectAt(c, ebiten.IsKeyPressed(ebiten.KeyShift))
		}
	}
	v.prevLeft = left

	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if right && !v.prevRight {
		mx, my := ebiten.CursorPosition()
		if c, ok := v.cellAt(mx, my); ok {
			v.orderTo(c)
		}
	}
	v.prevRight = right
}

// cellAt maps a screen pixel to a grid cell.
func (v *Viewer) cellAt(x, y int) (game.Cell, bool) {
	x -= border
	y -= border
	if x < 0 || y < 0 || x >= v.mapW || y >= v.mapH {
		return game.Cell{}, false
	}
	return game.Cell{R: y / cellPx, C: x / cellPx}, true
}

func (v *Viewer) selectAt(c game.Cell, add bool) {
	if !add {
		v.world.ClearSelection()
	}
	a := v.world.AgentAt(c)
	if a == nil {
		return
	}
	a.SetSelected(!add || !a.Selected())
	v.log.Debug("select", "agent", a.Label(), "cell", c)
}

func (v *Viewer) orderTo(c game.Cell) {
	units := v.world.Selected()
	if len(units) == 0 {
		return
	}
	n, err := v.world.IssueMoveOrder(units, c, v.formation)
	if err != nil {
		v.log.Warn("move order rejected", "dest", c, "err", err)
		v.flash(err.Error())
		return
	}
	v.log.Info("move order", "dest", c, "units", len(units), "routed", n, "formation", v.formation)
	v.flash(fmt.Sprintf("%d/%d units to %v (%s)", n, len(units), c, v.formation))
}

func (v *Viewer) copyReport() {
	sel := v.world.Selected()
	if len(sel) == 0 {
		v.flash("select an agent first")
		return
	}
	report := v.world.AgentReport(sel[0], reportTick)
	if err := clipboard.WriteAll(report); err != nil {
		v.log.Warn("clipboard unavailable", "err", err)
		v.flash("clipboard unavailable")
		return
	}
	v.flash("copied report for " + sel[0].Label())
}

func (v *Viewer) flash(msg string) {
	v.status = msg
	v.statusUntil = v.world.TickCount() + 90
}

func nextTeam(t game.Team) game.Team {
	switch t {
	case game.TeamVillage:
		return game.TeamRaiders
	case game.TeamRaiders:
		return game.TeamWild
	case game.TeamWild:
		return game.TeamFauna
	default:
		return game.TeamVillage
	}
}

func nextFormation(ft game.FormationType) game.FormationType {
	if ft == game.FormationColumn {
		return game.FormationBlob
	}
	return ft + 1
}

// --- drawing helpers ---

func (v *Viewer) drawText(dst *ebiten.Image, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, v.face, op)
}

// cellXY is the pixel centre of a fractional grid position.
func cellXY(p game.Pos) (float32, float32) {
	return float32(border) + float32(p.C)*cellPx + cellPx/2,
		float32(border) + float32(p.R)*cellPx + cellPx/2
}

package view

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Pack-Sense/internal/game"
)

var (
	bgCol     = color.RGBA{R: 14, G: 16, B: 14, A: 255}
	openCol   = color.RGBA{R: 40, G: 54, B: 36, A: 255}
	wallCol   = color.RGBA{R: 70, G: 66, B: 60, A: 255}
	waterCol  = color.RGBA{R: 34, G: 62, B: 110, A: 255}
	brushCol  = color.RGBA{R: 30, G: 84, B: 34, A: 255}
	fogCol    = color.RGBA{R: 0, G: 0, B: 0, A: 120}
	gridCol   = color.RGBA{R: 255, G: 255, B: 255, A: 10}
	selectCol = color.RGBA{R: 255, G: 255, B: 120, A: 255}
	panelCol  = color.RGBA{R: 6, G: 10, B: 6, A: 230}
	textCol   = color.RGBA{R: 200, G: 220, B: 200, A: 255}
	dimText   = color.RGBA{R: 120, G: 140, B: 120, A: 255}
)

var teamCols = map[game.Team]color.RGBA{
	game.TeamVillage: {R: 90, G: 170, B: 255, A: 255},
	game.TeamRaiders: {R: 230, G: 70, B: 60, A: 255},
	game.TeamWild:    {R: 170, G: 170, B: 170, A: 255},
	game.TeamFauna:   {R: 210, G: 170, B: 90, A: 255},
}

func teamColor(t game.Team) color.RGBA {
	if c, ok := teamCols[t]; ok {
		return c
	}
	return textCol
}

func terrainColor(t game.Terrain) color.RGBA {
	switch t {
	case game.TerrainWall:
		return wallCol
	case game.TerrainWater:
		return waterCol
	case game.TerrainBrush:
		return brushCol
	default:
		return openCol
	}
}

// Draw renders the map, overlays, agents and side panel.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(bgCol)
	v.drawTerrain(screen)
	if v.showFog {
		v.drawFog(screen)
	}
	v.drawReservations(screen)
	if v.showBoard {
		v.drawBoards(screen)
	}
	v.drawPaths(screen)
	v.drawAgents(screen)
	v.drawTraces(screen)
	v.drawHUD(screen)
	v.drawThoughts(screen)
}

func (v *Viewer) drawTerrain(screen *ebiten.Image) {
	g := v.world.Grid()
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			x := float32(border + c*cellPx)
			y := float32(border + r*cellPx)
			vector.FillRect(screen, x, y, cellPx, cellPx, terrainColor(g.TerrainAt(r, c)), false)
		}
	}
	ox, oy := float32(border), float32(border)
	for c := 0; c <= g.Cols(); c++ {
		x := ox + float32(c*cellPx)
		vector.StrokeLine(screen, x, oy, x, oy+float32(v.mapH), 1, gridCol, false)
	}
	for r := 0; r <= g.Rows(); r++ {
		y := oy + float32(r*cellPx)
		vector.StrokeLine(screen, ox, y, ox+float32(v.mapW), y, 1, gridCol, false)
	}
	vector.StrokeRect(screen, ox-1, oy-1, float32(v.mapW)+2, float32(v.mapH)+2, 2, color.RGBA{R: 60, G: 90, B: 60, A: 200}, false)
}

// drawFog darkens cells the board team cannot currently see.
func (v *Viewer) drawFog(screen *ebiten.Image) {
	g := v.world.Grid()
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			if v.world.IsVisible(v.boardTeam, game.Cell{R: r, C: c}) {
				continue
			}
			vector.FillRect(screen, float32(border+c*cellPx), float32(border+r*cellPx), cellPx, cellPx, fogCol, false)
		}
	}
}

func (v *Viewer) drawReservations(screen *ebiten.Image) {
	for _, a := range v.world.Units() {
		res, ok := a.Reservation()
		if !ok || !a.Alive() {
			continue
		}
		col := teamColor(a.Team())
		col.A = 90
		x, y := cellXY(res.Cell.Center())
		d := float32(cellPx/2 - 2)
		vector.StrokeRect(screen, x-d, y-d, 2*d, 2*d, 1, col, false)
	}
}

// drawBoards marks every sighting on the board team's board and on each pack
// board, fading with age.
func (v *Viewer) drawBoards(screen *ebiten.Image) {
	now := v.world.Now()
	draw := func(ss []game.Sighting, ttl float64, col color.RGBA) {
		for _, s := range ss {
			fade := 1 - s.Age(now)/ttl
			if fade <= 0 {
				continue
			}
			c := col
			c.A = uint8(60 + 160*fade)
			x, y := cellXY(s.Pos)
			vector.StrokeLine(screen, x-4, y-4, x+4, y+4, 1.5, c, false)
			vector.StrokeLine(screen, x-4, y+4, x+4, y-4, 1.5, c, false)
		}
	}
	if tb := v.world.TeamBoard(v.boardTeam); tb != nil {
		draw(tb.Sightings(), tb.TTL(), teamColor(v.boardTeam))
	}
	for _, pb := range v.world.Packs() {
		col := teamColor(game.TeamWild)
		x, y := cellXY(pb.Den())
		vector.StrokeCircle(screen, x, y, cellPx*0.8, 1, col, false)
		draw(pb.Sightings(), pb.TTL(), color.RGBA{R: 255, G: 140, B: 0, A: 255})
	}
}

// drawPaths shows the remaining waypoints of selected agents.
func (v *Viewer) drawPaths(screen *ebiten.Image) {
	for _, a := range v.world.Selected() {
		px, py := cellXY(a.Pos())
		for _, c := range a.Waypoints() {
			x, y := cellXY(c.Center())
			vector.StrokeLine(screen, px, py, x, y, 1, color.RGBA{R: 255, G: 255, B: 255, A: 70}, false)
			px, py = x, y
		}
	}
}

func (v *Viewer) drawAgents(screen *ebiten.Image) {
	for _, a := range v.world.Units() {
		col := teamColor(a.Team())
		if !a.Alive() {
			x, y := cellXY(a.Pos())
			col.A = 80
			vector.StrokeLine(screen, x-3, y-3, x+3, y+3, 1, col, false)
			vector.StrokeLine(screen, x-3, y+3, x+3, y-3, 1, col, false)
			continue
		}
		fp := a.Footprint()
		if len(fp) > 1 {
			tail := col
			tail.A = 120
			x, y := cellXY(fp[1].Center())
			vector.FillCircle(screen, x, y, cellPx*0.3, tail, false)
		}
		x, y := cellXY(a.Pos())
		vector.FillCircle(screen, x, y, cellPx*0.38, col, true)
		hx := x + float32(math.Cos(a.Heading()))*cellPx*0.6
		hy := y + float32(math.Sin(a.Heading()))*cellPx*0.6
		vector.StrokeLine(screen, x, y, hx, hy, 1.5, color.White, true)
		if a.Selected() {
			vector.StrokeCircle(screen, x, y, cellPx*0.6, 1.5, selectCol, true)
		}
		if a.TargetID() != 0 && a.Selected() {
			if t := v.world.Unit(a.TargetID()); t != nil {
				tx, ty := cellXY(t.Pos())
				vector.StrokeLine(screen, x, y, tx, ty, 1, color.RGBA{R: 255, G: 60, B: 60, A: 140}, false)
			}
		}
	}
}

func (v *Viewer) drawTraces(screen *ebiten.Image) {
	for _, t := range v.world.ShotTraces() {
		col := color.RGBA{R: 255, G: 230, B: 120, A: 200}
		if !t.Hit {
			col = color.RGBA{R: 180, G: 180, B: 180, A: 120}
		}
		x0, y0 := cellXY(t.From)
		x1, y1 := cellXY(t.To)
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, col, true)
	}
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	speed := fmt.Sprintf("%gx", speeds[v.speedIdx])
	if v.paused {
		speed = "PAUSED"
	}
	alive := v.world.Alive()
	lines := []string{
		fmt.Sprintf("t=%.1fs tick %d  %s  space=pause ,/.=speed n=step", v.world.Now(), v.world.TickCount(), speed),
		fmt.Sprintf("village %d  raiders %d  wild %d  fauna %d",
			alive[game.TeamVillage], alive[game.TeamRaiders], alive[game.TeamWild], alive[game.TeamFauna]),
		fmt.Sprintf("board [%s] b=toggle tab=team v=fog  formation [%s] f=cycle", v.boardTeam, v.formation),
		"click=select shift=add  right-click=move  c=copy report",
	}
	if v.status != "" && v.world.TickCount() < v.statusUntil {
		lines = append(lines, v.status)
	}
	y := border + v.mapH + 6
	for _, l := range lines {
		v.drawText(screen, l, border, y, dimText)
		y += lineH
	}
}

func (v *Viewer) drawThoughts(screen *ebiten.Image) {
	px := float32(border*2 + v.mapW)
	vector.FillRect(screen, px, 0, panelW, float32(v.height), panelCol, false)
	vector.StrokeLine(screen, px, 0, px, float32(v.height), 1, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)

	x := int(px) + 8
	y := border
	v.drawText(screen, "THOUGHTS", x, y, textCol)
	y += lineH + 4

	entries := v.world.Thoughts().Recent()
	rows := (v.height - y - border) / lineH
	if len(entries) > rows {
		entries = entries[len(entries)-rows:]
	}
	for _, e := range entries {
		v.drawText(screen, fmt.Sprintf("%04d %-3s %s", e.Tick, e.Label, e.Message), x, y, teamColor(e.Team))
		y += lineH
	}
}

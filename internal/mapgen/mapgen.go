// Package mapgen draws a printable PDF journal of a play-through: the nodes a
// character visited, laid out as a winding trail on an old parchment map,
// with a summary of the character beside it.
package mapgen

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"taleforge/internal/game"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	sceneSize = 52.0
	pathStep  = 78.0
	perRow    = 5
	trailTop  = margin + 150
	fontSize  = 8
	titleSize = 16
	labelSize = 7
)

// maxStops is how many trail stops fit on one page; longer journeys keep the
// most recent ones.
const maxStops = perRow * 8

var ErrNoStory = errors.New("mapgen: no story")

// Journal is what goes on the page.
type Journal struct {
	Title   string
	Visited []string
	Current string
	Player  game.Player
}

type stop struct {
	id      string
	title   string
	glyph   string
	current bool
}

// Generate returns the PDF bytes for j drawn against story st. An empty
// Visited list draws Current as the only stop.
func Generate(st *game.Story, j Journal) ([]byte, error) {
	if st == nil || st.Nodes == nil {
		return nil, ErrNoStory
	}
	path := j.Visited
	if len(path) == 0 {
		path = []string{j.Current}
	}
	if len(path) > maxStops {
		path = path[len(path)-maxStops:]
	}
	stops := make([]stop, len(path))
	for i, id := range path {
		stops[i] = stop{
			id:      id,
			title:   stopLabel(id, st.Nodes[id]),
			glyph:   glyphFor(st.Nodes[id]),
			current: i == len(path)-1 && id == j.Current,
		}
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(j.Title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Parchment
	pdf.SetFillColor(245, 235, 210)
	pdf.Rect(0, 0, pageW, pageH, "F")
	drawRaggedBorder(pdf)

	pdf.SetDrawColor(80, 50, 30)
	pdf.SetTextColor(80, 50, 30)
	pdf.SetLineWidth(1)

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin+10, margin+8)
	pdf.CellFormat(300, 16, tr(orDefault(j.Title, st.Title)), "", 0, "L", false, 0, "")
	drawCompassRose(pdf, pageW-margin-45, margin+45)
	drawCharacter(pdf, tr, j.Player, margin+10, margin+34)

	positions := layout(len(stops))
	drawTrail(pdf, positions)
	for i, s := range stops {
		x, y := positions[i][0], positions[i][1]
		drawScene(pdf, x, y, s.glyph, s.current)

		pdf.SetFont("Helvetica", "B", labelSize)
		pdf.SetTextColor(40, 25, 15)
		pdf.SetXY(x-sceneSize/2-8, y+sceneSize/2+4)
		pdf.CellFormat(sceneSize+16, 9, tr(s.title), "", 0, "C", false, 0, "")
		if s.current {
			pdf.SetFont("Helvetica", "I", 7)
			pdf.SetXY(x-sceneSize/2, y+sceneSize/2+13)
			pdf.CellFormat(sceneSize, 8, "You are here", "", 0, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render journal: %w", err)
	}
	return buf.Bytes(), nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// stopLabel prefers the node title and falls back to the humanised id.
func stopLabel(id string, n *game.Node) string {
	label := id
	if n != nil && n.Title != "" {
		label = n.Title
	}
	label = strings.ToUpper(strings.ReplaceAll(label, "_", " "))
	if len(label) > 20 {
		label = label[:17] + "..."
	}
	return label
}

// glyphFor picks a picture for the node: its first recognised tag, else one
// for its type.
func glyphFor(n *game.Node) string {
	if n == nil {
		return "unknown"
	}
	for _, tag := range n.Tags {
		if _, ok := sceneries[tag]; ok {
			return tag
		}
	}
	switch {
	case n.IsCombat():
		return "battle"
	case n.IsShop():
		return "town"
	case n.Terminal():
		return "ending"
	}
	return "default"
}

// layout snakes the stops across the page, left to right then back.
func layout(n int) [][2]float64 {
	pos := make([][2]float64, n)
	x0 := float64(margin) + sceneSize
	for i := range pos {
		row, col := i/perRow, i%perRow
		if row%2 == 1 {
			col = perRow - 1 - col
		}
		pos[i] = [2]float64{x0 + float64(col)*pathStep*1.15, trailTop + float64(row)*pathStep}
	}
	return pos
}

func drawTrail(pdf *gofpdf.Fpdf, pos [][2]float64) {
	pdf.SetDrawColor(180, 40, 40)
	pdf.SetLineWidth(2)
	pdf.SetDashPattern([]float64{10, 6}, 0)
	for i := 0; i+1 < len(pos); i++ {
		pdf.Line(pos[i][0], pos[i][1], pos[i+1][0], pos[i+1][1])
	}
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
}

// drawCharacter writes the character summary block under the title.
func drawCharacter(pdf *gofpdf.Fpdf, tr func(string) string, p game.Player, x, y float64) {
	if p.Name == "" {
		return
	}
	lines := []string{
		fmt.Sprintf("%s, level %d %s %s", p.Name, p.Level, p.Race, p.ActiveClass),
		fmt.Sprintf("Hearts %d/%d   Mana %d/%d   Gold %d   XP %d", p.Hearts, p.MaxHearts, p.Mana, p.MaxMana, p.Stats.Gold, p.XP),
		fmt.Sprintf("STR %d  INT %d  VIT %d  MAG %d  DEX %d  AGI %d  LUK %d  CHA %d",
			p.Stats.Strength, p.Stats.Intelligence, p.Stats.Vitality, p.Stats.Magic,
			p.Stats.Dexterity, p.Stats.Agility, p.Stats.Luck, p.Stats.Charm),
	}
	if len(p.Spells) > 0 {
		lines = append(lines, "Spells: "+strings.Join(p.Spells, ", "))
	}
	pdf.SetFont("Helvetica", "", fontSize+1)
	for i, l := range lines {
		pdf.SetXY(x, y+float64(i)*12)
		pdf.CellFormat(380, 11, tr(l), "", 0, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", fontSize)
}

// drawRaggedBorder outlines the page with a wobbling edge.
func drawRaggedBorder(pdf *gofpdf.Fpdf) {
	pts := raggedRect(margin/2, margin/2, pageW-margin, pageH-margin, 14, 4)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(2)
	pdf.Polygon(pts, "D")
	pdf.SetLineWidth(1)
}

// raggedRect returns a closed outline of the rectangle with a sine wobble
// on each side, walking clockwise from the top-left corner.
func raggedRect(x, y, w, h float64, steps int, amp float64) []gofpdf.PointType {
	corners := [4][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	pts := make([]gofpdf.PointType, 0, steps*4)
	for side := range 4 {
		from, to := corners[side], corners[(side+1)%4]
		for i := range steps {
			t := float64(i) / float64(steps)
			wob := amp * math.Sin(float64(i+side*steps)*0.7)
			pts = append(pts, gofpdf.PointType{
				X: from[0] + t*(to[0]-from[0]) + wob,
				Y: from[1] + t*(to[1]-from[1]) + wob*0.6,
			})
		}
	}
	return pts
}

func drawCompassRose(pdf *gofpdf.Fpdf, cx, cy float64) {
	const rad = 20.0
	pdf.SetDrawColor(101, 67, 33)
	pdf.Circle(cx, cy, rad, "D")
	for i := range 8 {
		angle := float64(i)*math.Pi/4 - math.Pi/2
		if i%2 == 0 {
			pdf.SetDrawColor(180, 40, 40)
			pdf.SetLineWidth(1.5)
		} else {
			pdf.SetDrawColor(180, 140, 60)
			pdf.SetLineWidth(1)
		}
		pdf.Line(cx, cy, cx+rad*math.Cos(angle), cy+rad*math.Sin(angle))
	}
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(cx-4, cy-rad-12)
	pdf.CellFormat(8, 6, "N", "", 0, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", fontSize)
}

type painter func(pdf *gofpdf.Fpdf, x, y, r float64)

// sceneries maps node tags to pictures.
var sceneries = map[string]painter{
	"forest":  drawForest,
	"cave":    drawCave,
	"dungeon": drawCave,
	"river":   drawRiver,
	"shore":   drawRiver,
	"hills":   drawHills,
	"mountain": func(pdf *gofpdf.Fpdf, x, y, r float64) {
		pdf.Polygon([]gofpdf.PointType{{X: x - r*0.7, Y: y + r*0.4}, {X: x, Y: y - r*0.6}, {X: x + r*0.7, Y: y + r*0.4}}, "D")
	},
	"village": drawTown,
	"town":    drawTown,
	"castle":  drawHouse,
	"house":   drawHouse,
	"bridge":  drawBridge,
	"road":    drawRoad,
}

func drawScene(pdf *gofpdf.Fpdf, x, y float64, glyph string, current bool) {
	r := sceneSize / 2
	if current {
		pdf.SetDrawColor(80, 50, 20)
		pdf.SetLineWidth(2)
		pdf.Circle(x, y, r+4, "D")
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(1.2)
	switch glyph {
	case "battle":
		drawHills(pdf, x, y, r)
		drawSwords(pdf, x, y, r)
	case "ending":
		drawFlag(pdf, x, y, r)
	case "unknown":
		pdf.SetDashPattern([]float64{2, 2}, 0)
		pdf.Circle(x, y, r*0.35, "D")
		pdf.SetDashPattern([]float64{}, 0)
	default:
		if p, ok := sceneries[glyph]; ok {
			p(pdf, x, y, r)
		} else {
			pdf.Circle(x, y, r*0.35, "D")
		}
	}
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
}

func drawForest(pdf *gofpdf.Fpdf, x, y, r float64) {
	for i, dx := range []float64{-r * 0.4, 0, r * 0.35} {
		h := 12 + float64(i)*4
		pdf.Line(x+dx, y, x+dx, y-h)
		pdf.Circle(x+dx, y-h, 5, "D")
	}
}

func drawCave(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Arc(x, y+r*0.3, r*0.8, r*0.6, 0, 0, 180, "D")
	pdf.Line(x-r*0.8, y+r*0.3, x-r*0.8, y+r*0.7)
	pdf.Line(x+r*0.8, y+r*0.3, x+r*0.8, y+r*0.7)
}

func drawRiver(pdf *gofpdf.Fpdf, x, y, r float64) {
	for i := range 3 {
		dy := float64(i-1) * 6
		pdf.Curve(x-r*0.8, y+dy, x, y+dy-6, x+r*0.8, y+dy, "D")
	}
}

func drawHills(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Arc(x-r*0.4, y+r*0.3, r*0.5, r*0.4, 0, 0, 180, "D")
	pdf.Arc(x+r*0.3, y+r*0.3, r*0.5, r*0.35, 0, 0, 180, "D")
}

func drawTown(pdf *gofpdf.Fpdf, x, y, r float64) {
	for i, dx := range []float64{-r * 0.5, -r * 0.1, r * 0.3} {
		w, h := 10.0, 14.0+float64(i)*4
		pdf.Rect(x+dx-w/2, y+r*0.4-h, w, h, "D")
	}
}

func drawHouse(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Rect(x-r*0.4, y-r*0.2, r*0.8, r*0.6, "D")
	pdf.Line(x-r*0.4, y-r*0.2, x, y-r*0.5)
	pdf.Line(x, y-r*0.5, x+r*0.4, y-r*0.2)
}

func drawBridge(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Line(x-r*0.7, y+3, x+r*0.7, y+3)
	pdf.Arc(x, y+8, r*0.6, 8, 0, 0, 180, "D")
}

func drawRoad(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.SetLineWidth(2)
	pdf.Line(x-r*0.8, y+r*0.2, x+r*0.8, y-r*0.2)
}

func drawSwords(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.SetDrawColor(150, 20, 20)
	pdf.SetLineWidth(1.8)
	pdf.Line(x-r*0.45, y-r*0.45, x+r*0.45, y+r*0.45)
	pdf.Line(x-r*0.45, y+r*0.45, x+r*0.45, y-r*0.45)
}

func drawFlag(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Line(x-r*0.3, y+r*0.5, x-r*0.3, y-r*0.5)
	pdf.SetFillColor(180, 40, 40)
	pdf.Polygon([]gofpdf.PointType{{X: x - r*0.3, Y: y - r*0.5}, {X: x + r*0.4, Y: y - r*0.3}, {X: x - r*0.3, Y: y - r*0.1}}, "DF")
}

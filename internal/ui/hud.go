//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// Stats holds the per-frame readouts shown in the panel.
type Stats struct {
	Time          float64
	TimeStep      float64
	SubSteps      int
	Cfl           float64
	MaxDivergence float64
	TotalDensity  float64
	Paused        bool
}

// Tunable is a parameter the panel can adjust with +/- buttons.
type Tunable struct {
	Label string
	Step  float64
	Min   float64
	Max   float64
	Get   func() float64
	Set   func(float64)
}

// HUD renders the stats and tuning panel to the right of the simulation view.
type HUD struct {
	width      int
	panel      *ebiten.Image
	lastHeight int

	tunables     []tunableState
	panelOffsetX int

	pixel *ebiten.Image
}

type tunableState struct {
	tunable   Tunable
	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

// NewHUD constructs a HUD of the given panel width.
func NewHUD(width int, tunables []Tunable) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	h.tunables = make([]tunableState, len(tunables))
	for i, t := range tunables {
		h.tunables[i] = tunableState{tunable: t}
	}
	h.layoutTunables()
	return h
}

// Update handles panel interactions.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	h.handleInput()
}

// Draw paints the panel anchored to the right edge of the simulation view.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int, stats Stats) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dx() != h.width || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawStats(stats)
	h.drawTunables()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawStats(stats Stats) {
	face := basicfont.Face7x13
	header := "Smoke"
	if stats.Paused {
		header = "Smoke [paused]"
	}
	y := panelPadding + headerBaseline
	text.Draw(h.panel, header, face, panelPadding, y, color.RGBA{R: 200, G: 200, B: 210, A: 255})

	lines := []string{
		fmt.Sprintf("t         %8.3f", stats.Time),
		fmt.Sprintf("dt        %8.4f", stats.TimeStep),
		fmt.Sprintf("substeps  %8d", stats.SubSteps),
		fmt.Sprintf("cfl       %8.3f", stats.Cfl),
		fmt.Sprintf("max div   %8.2e", stats.MaxDivergence),
		fmt.Sprintf("density   %8.2f", stats.TotalDensity),
	}
	col := color.RGBA{R: 170, G: 175, B: 185, A: 255}
	for i, line := range lines {
		text.Draw(h.panel, line, face, panelPadding, y+statSpacing*(i+1), col)
	}
}

func (h *HUD) handleInput() {
	if len(h.tunables) == 0 {
		return
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i := range h.tunables {
		state := &h.tunables[i]
		if pointInRect(px, my, state.minusRect) {
			h.applyAdjustment(state, -1)
			return
		}
		if pointInRect(px, my, state.plusRect) {
			h.applyAdjustment(state, 1)
			return
		}
	}
}

func (h *HUD) applyAdjustment(state *tunableState, direction int) {
	t := state.tunable
	if t.Get == nil || t.Set == nil {
		return
	}
	step := t.Step
	if step <= 0 {
		step = 0.05
	}
	target := t.Get() + float64(direction)*step
	if target < t.Min {
		target = t.Min
	}
	if t.Max > t.Min && target > t.Max {
		target = t.Max
	}
	if math.Abs(target-t.Get()) < 1e-12 {
		return
	}
	t.Set(target)
}

func (h *HUD) drawTunables() {
	if h.panel == nil {
		return
	}
	face := basicfont.Face7x13
	for i := range h.tunables {
		state := &h.tunables[i]
		t := state.tunable
		top := state.top
		labelY := top + labelBaseline
		text.Draw(h.panel, t.Label, face, panelPadding, labelY, color.RGBA{R: 220, G: 220, B: 230, A: 255})

		value := formatTunable(t)
		bounds := text.BoundString(face, value)
		valueX := state.minusRect.Min.X - buttonGap - bounds.Dx()
		text.Draw(h.panel, value, face, valueX, labelY, color.RGBA{R: 220, G: 220, B: 230, A: 255})

		h.drawButton(state.minusRect, "-")
		h.drawButton(state.plusRect, "+")
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorM.Scale(float64(bg.R)/255.0, float64(bg.G)/255.0, float64(bg.B)/255.0, float64(bg.A)/255.0)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutTunables() {
	if len(h.tunables) == 0 || h.width <= 0 {
		return
	}
	for i := range h.tunables {
		top := tunablesTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plusRect := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minusRect := image.Rect(plusRect.Min.X-buttonGap-buttonSize, buttonY, plusRect.Min.X-buttonGap, buttonY+buttonSize)
		h.tunables[i].top = top
		h.tunables[i].minusRect = minusRect
		h.tunables[i].plusRect = plusRect
	}
}

func formatTunable(t Tunable) string {
	step := t.Step
	if step <= 0 {
		step = 0.05
	}
	precision := 2
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	default:
		precision = 1
	}
	return strconv.FormatFloat(t.Get(), 'f', precision, 64)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	statSpacing    = 16
	tunablesTop    = panelPadding + headerBaseline + 7*statSpacing + 10
)

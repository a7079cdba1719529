//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// FlowProvider samples the simulation velocity at a cell-space position.
// Coordinates are in cell units with y increasing upward.
type FlowProvider interface {
	FlowVectorAt(cx, cy float64) (float64, float64)
	GridCells() (int, int)
}

// ObstacleProvider exposes a circular obstacle outline in cell units.
type ObstacleProvider interface {
	ObstacleCircle() (cx, cy, radius float64, ok bool)
}

// Overlay draws optional debugging visuals on top of the base view.
type Overlay struct {
	flow     FlowProvider
	scale    int
	showFlow bool
	showObst bool

	pixel          *ebiten.Image
	flowSamples    []flowSample
	flowCacheW     int
	flowCacheH     int
	flowCacheScale int
	flowPixelSpan  float64
	maxSpeed       float64
}

type flowSample struct {
	cx float64
	cy float64
	sx float64
	sy float64
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(flow FlowProvider, scale int) *Overlay {
	o := &Overlay{flow: flow, scale: scale, showObst: true, maxSpeed: 1.0}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles overlay layers from keyboard input.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		o.showFlow = !o.showFlow
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		o.showObst = !o.showObst
	}
}

// Draw renders the enabled overlay layers onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if o.flow == nil {
		return
	}
	w, h := o.flow.GridCells()
	if w <= 0 || h <= 0 {
		return
	}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}

	if o.showFlow {
		o.drawFlowField(screen, w, h, scale)
	}
	if o.showObst {
		if provider, ok := o.flow.(ObstacleProvider); ok {
			if cx, cy, r, exists := provider.ObstacleCircle(); exists {
				o.drawCircle(screen, cx*float64(scale), flipY(cy, h)*float64(scale), r*float64(scale))
			}
		}
	}
}

// flipY maps a cell-space y (up) to screen rows (down).
func flipY(cy float64, h int) float64 { return float64(h) - cy }

func (o *Overlay) drawFlowField(screen *ebiten.Image, w, h, scale int) {
	if !o.ensureFlowSamples(w, h, scale) {
		return
	}

	const (
		calmThreshold = 1e-4
		headAngle     = math.Pi / 6
		calmDotScale  = 0.18
		minThickness  = 0.65
		maxThickness  = 1.05
	)

	baseSpan := o.flowPixelSpan
	if baseSpan <= 0 {
		baseSpan = float64(scale) * 4
	}
	minLength := baseSpan * 0.35
	maxLength := baseSpan * 0.7

	// Track a running speed estimate so arrow lengths stay comparable
	// as the flow spins up.
	frameMax := calmThreshold
	for _, sample := range o.flowSamples {
		vx, vy := o.flow.FlowVectorAt(sample.cx, sample.cy)
		speed := math.Hypot(vx, vy)
		if speed > frameMax {
			frameMax = speed
		}
	}
	if frameMax > o.maxSpeed {
		o.maxSpeed = frameMax
	}

	calmDotSize := baseSpan * calmDotScale
	if calmDotSize < float64(scale)*0.75 {
		calmDotSize = float64(scale) * 0.75
	}

	for _, sample := range o.flowSamples {
		vx, vy := o.flow.FlowVectorAt(sample.cx, sample.cy)
		speed := math.Hypot(vx, vy)
		if speed < calmThreshold {
			o.drawPoint(screen, sample.sx, sample.sy, calmDotSize, color.RGBA{R: 90, G: 130, B: 170, A: 120})
			continue
		}

		// Screen rows grow downward, so the y component flips sign.
		nx := vx / speed
		ny := -vy / speed
		normalized := clamp01(speed / o.maxSpeed)
		length := minLength + (maxLength-minLength)*math.Sqrt(normalized)
		headLength := math.Min(length*0.3, float64(scale)*4.5)
		tailLength := length * 0.4
		tipX := sample.sx + nx*(length-tailLength)
		tipY := sample.sy + ny*(length-tailLength)
		tailX := sample.sx - nx*tailLength
		tailY := sample.sy - ny*tailLength
		bodyEndX := tipX - nx*headLength
		bodyEndY := tipY - ny*headLength

		thickness := float64(scale) * (minThickness + (maxThickness-minThickness)*normalized)
		if thickness < 1 {
			thickness = 1
		}

		col := interpolateColor(normalized)
		o.drawLine(screen, tailX, tailY, bodyEndX, bodyEndY, thickness, col)

		angle := math.Atan2(ny, nx)
		leftX := tipX - math.Cos(angle+headAngle)*headLength
		leftY := tipY - math.Sin(angle+headAngle)*headLength
		rightX := tipX - math.Cos(angle-headAngle)*headLength
		rightY := tipY - math.Sin(angle-headAngle)*headLength
		o.drawLine(screen, tipX, tipY, leftX, leftY, thickness*0.85, col)
		o.drawLine(screen, tipX, tipY, rightX, rightY, thickness*0.85, col)
	}
}

func (o *Overlay) ensureFlowSamples(w, h, scale int) bool {
	if o.flowCacheW == w && o.flowCacheH == h && o.flowCacheScale == scale && len(o.flowSamples) > 0 {
		return true
	}

	const (
		targetSamples = 360.0
		minSpacing    = 4
		maxSpacing    = 20
	)

	area := float64(w * h)
	spacing := int(math.Sqrt(area / targetSamples))
	if spacing < minSpacing {
		spacing = minSpacing
	}
	if spacing > maxSpacing {
		spacing = maxSpacing
	}

	countX := (w + spacing - 1) / spacing
	countY := (h + spacing - 1) / spacing
	if countX <= 0 {
		countX = 1
	}
	if countY <= 0 {
		countY = 1
	}

	startX := (w - 1 - (countX-1)*spacing) / 2
	startY := (h - 1 - (countY-1)*spacing) / 2
	if startX < 0 {
		startX = 0
	}
	if startY < 0 {
		startY = 0
	}

	o.flowSamples = o.flowSamples[:0]
	for yi := 0; yi < countY; yi++ {
		cellY := startY + yi*spacing
		if cellY >= h {
			cellY = h - 1
		}
		cy := float64(cellY) + 0.5
		for xi := 0; xi < countX; xi++ {
			cellX := startX + xi*spacing
			if cellX >= w {
				cellX = w - 1
			}
			cx := float64(cellX) + 0.5
			o.flowSamples = append(o.flowSamples, flowSample{
				cx: cx,
				cy: cy,
				sx: cx * float64(scale),
				sy: flipY(cy, h) * float64(scale),
			})
		}
	}

	o.flowCacheW = w
	o.flowCacheH = h
	o.flowCacheScale = scale
	o.flowPixelSpan = float64(spacing) * float64(scale)
	return len(o.flowSamples) > 0
}

func (o *Overlay) drawCircle(screen *ebiten.Image, cx, cy, radius float64) {
	if o.pixel == nil || radius <= 0 {
		return
	}
	col := color.RGBA{R: 240, G: 240, B: 250, A: 200}
	segments := int(math.Max(24, radius))
	prevX := cx + radius
	prevY := cy
	for i := 1; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		x := cx + radius*math.Cos(theta)
		y := cy + radius*math.Sin(theta)
		o.drawLine(screen, prevX, prevY, x, y, 1.2, col)
		prevX = x
		prevY = y
	}
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if o.pixel == nil || size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(o.pixel, op)
}

func interpolateColor(t float64) color.RGBA {
	t = clamp01(t)
	r := uint8(math.Round(80 + 70*t))
	g := uint8(math.Round(170 + 70*t))
	b := uint8(math.Round(230 + 20*t))
	a := uint8(math.Round(150 + 90*t))
	return color.RGBA{R: r, G: g, B: b, A: a}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

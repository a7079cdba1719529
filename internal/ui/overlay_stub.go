//go:build !ebiten

package ui

// FlowProvider samples the simulation velocity at a cell-space position.
type FlowProvider interface {
	FlowVectorAt(cx, cy float64) (float64, float64)
	GridCells() (int, int)
}

// Overlay is a no-op placeholder used when the ebiten build tag is absent.
type Overlay struct{}

// NewOverlay constructs a stub overlay.
func NewOverlay(FlowProvider, int) *Overlay { return &Overlay{} }

// Update is a no-op in headless builds.
func (o *Overlay) Update() {}

// Draw is a no-op placeholder.
func (o *Overlay) Draw(any) {}

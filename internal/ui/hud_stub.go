//go:build !ebiten

package ui

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

// HUD is a no-op placeholder for headless builds.
type HUD struct{}

// NewHUD returns nil in the headless build.
func NewHUD(int, []Tunable) *HUD { return nil }

// Update is a no-op in the headless build.
func (h *HUD) Update(int) {}

// Draw is a no-op in the headless build.
func (h *HUD) Draw(any, int, int, Stats) {}

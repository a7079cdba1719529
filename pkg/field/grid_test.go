package field

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gridflow/pkg/vec"
)

func linearValue(x, y float64) float64 { return 2*x + 3*y }

func TestGrid2SampleBilinear(t *testing.T) {
	g, err := NewGrid2(Size2{X: 11, Y: 11}, vec.V2{X: 0.1, Y: 0.1}, vec.V2{})
	assert.NoError(t, err)

	g.Size().ForEach(func(i Index2) {
		p := g.DataPosition(i)
		g.Set(i, linearValue(p.X, p.Y))
	})

	// points on the grid should work
	assert.InDelta(t, linearValue(0.5, 0.5), g.Sample(vec.V2{X: 0.5, Y: 0.5}), 1e-12, "on grid")
	// points just off the grid should also work
	assert.InDelta(t, linearValue(0.51, 0.5), g.Sample(vec.V2{X: 0.51, Y: 0.5}), 1e-12, "nearby x")
	assert.InDelta(t, linearValue(0.5, 0.57), g.Sample(vec.V2{X: 0.5, Y: 0.57}), 1e-12, "nearby y")
	// points on the edge of the grid should work
	assert.InDelta(t, linearValue(0, 0), g.Sample(vec.V2{}), 1e-12, "grid edge")
	assert.InDelta(t, linearValue(1, 1), g.Sample(vec.V2{X: 1, Y: 1}), 1e-12, "far corner")
}

func TestGrid2SampleClampsOutOfRange(t *testing.T) {
	g, err := NewGrid2(Size2{X: 4, Y: 4}, vec.V2{X: 1, Y: 1}, vec.V2{})
	assert.NoError(t, err)
	g.Fill(7)

	// far outside on every side: must clamp, never panic
	assert.Equal(t, 7.0, g.Sample(vec.V2{X: -100, Y: -100}))
	assert.Equal(t, 7.0, g.Sample(vec.V2{X: 100, Y: 100}))
	assert.Equal(t, 7.0, g.Sample(vec.V2{X: -100, Y: 100}))
}

func TestGrid2DataPosition(t *testing.T) {
	g, err := NewGrid2(Size2{X: 3, Y: 3}, vec.V2{X: 0.5, Y: 2}, vec.V2{X: 1, Y: -1})
	assert.NoError(t, err)

	assert.Equal(t, vec.V2{X: 1, Y: -1}, g.DataPosition(Index2{}))
	assert.Equal(t, vec.V2{X: 2, Y: 3}, g.DataPosition(Index2{X: 2, Y: 2}))
}

func TestGrid2RejectsDegenerateGeometry(t *testing.T) {
	_, err := NewGrid2(Size2{X: 0, Y: 3}, vec.V2{X: 1, Y: 1}, vec.V2{})
	assert.Error(t, err, "zero size")

	_, err = NewGrid2(Size2{X: 3, Y: 3}, vec.V2{X: 0, Y: 1}, vec.V2{})
	assert.Error(t, err, "zero spacing")
}

func TestCellCenteredGridGeometry(t *testing.T) {
	c, err := NewCellCenteredGrid(Size2{X: 4, Y: 2}, vec.V2{X: 1, Y: 1}, vec.V2{})
	assert.NoError(t, err)

	assert.Equal(t, vec.V2{X: 0.5, Y: 0.5}, c.DataPosition(Index2{}), "first sample at cell center")
	lo, hi := c.Bounds()
	assert.Equal(t, vec.V2{}, lo)
	assert.Equal(t, vec.V2{X: 4, Y: 2}, hi)
}

func TestFaceCenteredGridLayout(t *testing.T) {
	f, err := NewFaceCenteredGrid(Size2{X: 4, Y: 3}, vec.V2{X: 1, Y: 1}, vec.V2{})
	assert.NoError(t, err)

	assert.Equal(t, Size2{X: 5, Y: 3}, f.U().Size(), "u has one extra column")
	assert.Equal(t, Size2{X: 4, Y: 4}, f.V().Size(), "v has one extra row")

	// u samples sit on vertical faces, offset half a cell in y only.
	assert.Equal(t, vec.V2{X: 0, Y: 0.5}, f.U().DataPosition(Index2{}))
	// v samples sit on horizontal faces, offset half a cell in x only.
	assert.Equal(t, vec.V2{X: 0.5, Y: 0}, f.V().DataPosition(Index2{}))
}

func TestFaceCenteredGridCellCenterReconstruction(t *testing.T) {
	f, err := NewFaceCenteredGrid(Size2{X: 2, Y: 2}, vec.V2{X: 1, Y: 1}, vec.V2{})
	assert.NoError(t, err)

	f.U().Set(Index2{X: 0, Y: 0}, 1)
	f.U().Set(Index2{X: 1, Y: 0}, 3)
	f.V().Set(Index2{X: 0, Y: 0}, -2)
	f.V().Set(Index2{X: 0, Y: 1}, -4)

	got := f.ValueAtCellCenter(Index2{})
	assert.Equal(t, vec.V2{X: 2, Y: -3}, got, "averages bounding faces")
}

func TestFaceCenteredGridMaxMagnitude(t *testing.T) {
	f, err := NewFaceCenteredGrid(Size2{X: 4, Y: 4}, vec.V2{X: 1, Y: 1}, vec.V2{})
	assert.NoError(t, err)
	f.Fill(vec.V2{X: 3, Y: 4})

	assert.InDelta(t, 5.0, f.MaxMagnitude(vec.V2{}), 1e-12)
	assert.InDelta(t, 10.0, f.MaxMagnitude(vec.V2{X: 3, Y: 4}), 1e-12)
}

func TestConstantFields(t *testing.T) {
	s := ConstantScalarField{Value: 42}
	assert.Equal(t, 42.0, s.Sample(vec.V2{X: -5, Y: 100}))

	v := ConstantVectorField{Value: vec.V2{X: 1, Y: 2}}
	assert.Equal(t, vec.V2{X: 1, Y: 2}, v.Sample(vec.V2{}))
}

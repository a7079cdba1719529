package field

// Index2 is a 2-D integer grid coordinate.
type Index2 struct {
	X, Y int
}

// Size2 describes per-axis extents of a grid.
type Size2 struct {
	X, Y int
}

// Count returns the total number of cells.
func (s Size2) Count() int { return s.X * s.Y }

// Min returns the smaller extent.
func (s Size2) Min() int {
	if s.X < s.Y {
		return s.X
	}
	return s.Y
}

// Add returns s grown by n cells along each axis.
func (s Size2) Add(n int) Size2 { return Size2{s.X + n, s.Y + n} }

// Contains reports whether the index lies within the extents.
func (s Size2) Contains(i Index2) bool {
	return i.X >= 0 && i.Y >= 0 && i.X < s.X && i.Y < s.Y
}

// ForEach visits every index in row-major order.
func (s Size2) ForEach(fn func(i Index2)) {
	for y := 0; y < s.Y; y++ {
		for x := 0; x < s.X; x++ {
			fn(Index2{x, y})
		}
	}
}

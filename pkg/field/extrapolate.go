package field

// ExtrapolateToRegion extends values from marked cells into unmarked ones,
// one layer per iteration. A marker of 1 means the cell holds a valid value.
// After depth layers the remaining unmarked cells keep their original values.
// The grid is updated in place; marker is consumed as scratch space.
func ExtrapolateToRegion(g *Grid2, marker []uint8, depth int) {
	size := g.Size()
	if len(marker) != size.Count() {
		return
	}
	next := make([]uint8, len(marker))

	for layer := 0; layer < depth; layer++ {
		copy(next, marker)
		changed := false
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				idx := y*size.X + x
				if marker[idx] != 0 {
					continue
				}
				sum := 0.0
				count := 0
				if x > 0 && marker[idx-1] != 0 {
					sum += g.data[idx-1]
					count++
				}
				if x+1 < size.X && marker[idx+1] != 0 {
					sum += g.data[idx+1]
					count++
				}
				if y > 0 && marker[idx-size.X] != 0 {
					sum += g.data[idx-size.X]
					count++
				}
				if y+1 < size.Y && marker[idx+size.X] != 0 {
					sum += g.data[idx+size.X]
					count++
				}
				if count > 0 {
					g.data[idx] = sum / float64(count)
					next[idx] = 1
					changed = true
				}
			}
		}
		copy(marker, next)
		if !changed {
			break
		}
	}
}

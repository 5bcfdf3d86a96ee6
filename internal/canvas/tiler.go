package canvas

// floorDiv is integer division rounding toward negative infinity. Grid
// arithmetic needs it: Go's native division truncates toward zero, which
// would misplace chunks for negative pixel coordinates.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// gridRange converts the pixel rectangle starting at (x, y) with extent
// (dx, dy) into the inclusive chunk coordinate range it touches, on a grid
// of the given chunk size whose chunk (0,0) starts at pixel -offset.
func gridRange(x, y, dx, dy, size, offset int64) (x0, y0, x1, y1 int64) {
	x0 = floorDiv(x+offset, size)
	y0 = floorDiv(y+offset, size)
	x1 = floorDiv(x+dx+offset, size)
	y1 = floorDiv(y+dy+offset, size)
	return
}

// emitGrid materializes one chunk per coordinate of the inclusive range, in
// row-major order: all of row y0 left to right, then row y0+1, and so on.
func emitGrid(x0, y0, x1, y1 int64, mk func(x, y int) Chunk) ([]Chunk, Grid) {
	cols := int(x1 - x0 + 1)
	rows := int(y1 - y0 + 1)
	chunks := make([]Chunk, 0, cols*rows)
	for gy := y0; gy <= y1; gy++ {
		for gx := x0; gx <= x1; gx++ {
			chunks = append(chunks, mk(int(gx), int(gy)))
		}
	}
	return chunks, Grid{Cols: cols, Rows: rows}
}

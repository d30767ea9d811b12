package state

// Clamp limits i to [0, n-1]. It returns 0 for an empty list.
func Clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Viewport tracks the first visible row of a scrolling list.
type Viewport struct {
	Offset int
}

// EnsureVisible moves the viewport so that cursor is within the maxVisible
// rows shown for a list of total entries.
func (v *Viewport) EnsureVisible(cursor, total, maxVisible int) {
	if total == 0 || maxVisible <= 0 {
		v.Offset = 0
		return
	}
	cursor = Clamp(cursor, total)
	maxOffset := total - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.Offset > maxOffset {
		v.Offset = maxOffset
	}
	if v.Offset < 0 {
		v.Offset = 0
	}
	if cursor < v.Offset {
		v.Offset = cursor
	}
	if upper := v.Offset + maxVisible - 1; cursor > upper {
		v.Offset = cursor - maxVisible + 1
		if v.Offset > maxOffset {
			v.Offset = maxOffset
		}
	}
}

// Window returns the [start, end) range of rows to render.
func (v *Viewport) Window(total, maxVisible int) (int, int) {
	if maxVisible <= 0 || maxVisible >= total {
		return 0, total
	}
	start := v.Offset
	if start > total-maxVisible {
		start = total - maxVisible
	}
	if start < 0 {
		start = 0
	}
	return start, start + maxVisible
}

package window

// Geometry is a window rectangle in screen cells. X/Y is the top-left corner.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the first column past the right edge.
func (g Geometry) Right() int { return g.X + g.Width }

// Bottom returns the first row past the bottom edge.
func (g Geometry) Bottom() int { return g.Y + g.Height }

// Contains reports whether the cell (x, y) lies inside g.
func (g Geometry) Contains(x, y int) bool {
	return x >= g.X && x < g.Right() && y >= g.Y && y < g.Bottom()
}

// Size is a width/height pair.
type Size struct {
	Width  int
	Height int
}

// Clamp raises g's dimensions to at least min.
func (g Geometry) Clamp(min Size) Geometry {
	g.Width = max(g.Width, min.Width)
	g.Height = max(g.Height, min.Height)
	return g
}

// Patch is a partial geometry update. Nil fields are left untouched.
type Patch struct {
	X      *int
	Y      *int
	Width  *int
	Height *int
}

// Apply merges p into g.
func (p Patch) Apply(g Geometry) Geometry {
	if p.X != nil {
		g.X = *p.X
	}
	if p.Y != nil {
		g.Y = *p.Y
	}
	if p.Width != nil {
		g.Width = *p.Width
	}
	if p.Height != nil {
		g.Height = *p.Height
	}
	return g
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil
}

// SetAll returns a patch that replaces every field with g's.
func SetAll(g Geometry) Patch {
	return Patch{X: &g.X, Y: &g.Y, Width: &g.Width, Height: &g.Height}
}

// MoveTo returns a patch that only changes the position.
func MoveTo(x, y int) Patch {
	return Patch{X: &x, Y: &y}
}

// ResizeTo returns a patch that only changes the size.
func ResizeTo(width, height int) Patch {
	return Patch{Width: &width, Height: &height}
}

package tmx

// Layer is either a grid of tiles or, when IsObject is set, a group of
// free-form objects. Grid layers keep Tiles in row-major order
// (index = y*Width + x); object layers keep Objects and leave Tiles empty.
type Layer struct {
	ID   int
	Name string

	Width, Height         int // Size in cells
	TileWidth, TileHeight int // Cell size in pixels

	IsObject bool

	Tiles   []Tile
	Objects []Object

	Visible          bool
	Opacity          float64
	OffsetX, OffsetY float64

	Properties Properties
}

// GetDisplayLocation converts a cell coordinate to a display-space position.
// The cell is not checked against the layer bounds.
func (l *Layer) GetDisplayLocation(x, y int, mode Orientation) Vector2 {
	w := float64(l.TileWidth)
	h := float64(l.TileHeight)

	if mode == Isometric {
		return Vector2{
			X: float64(x-y) * w / 2,
			Y: float64(x+y) * h / 2,
		}
	}

	return Vector2{
		X: float64(x) * w,
		Y: float64(y) * h,
	}
}

// InBounds reports whether (x, y) addresses a cell of this layer.
func (l *Layer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.Width && y < l.Height
}

// TileAt returns the tile at (x, y), or EmptyTile for object layers and
// coordinates outside the grid.
func (l *Layer) TileAt(x, y int) Tile {
	if l.IsObject || !l.InBounds(x, y) {
		return EmptyTile()
	}

	index := y*l.Width + x
	if index >= len(l.Tiles) {
		return EmptyTile()
	}

	return l.Tiles[index]
}

// GetProperty returns the first layer property named name, or nil.
func (l *Layer) GetProperty(name string) *Property {
	return l.Properties.Get(name)
}

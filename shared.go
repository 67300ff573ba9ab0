package tmx

// EmptyTileID marks a cell or object that references no tile.
const EmptyTileID = -1

// GID flag bits as stored by Tiled in the high bits of every tile reference.
const (
	FlagFlippedHorizontally uint32 = 0x80000000
	FlagFlippedVertically   uint32 = 0x40000000
	FlagFlippedDiagonally   uint32 = 0x20000000
	FlagRotatedHexagonal120 uint32 = 0x10000000

	gidMask = ^(FlagFlippedHorizontally | FlagFlippedVertically | FlagFlippedDiagonally | FlagRotatedHexagonal120)
)

// Tile represents a single grid cell's reference into a tile sheet.
type Tile struct {
	ID                         int // Global tile id, EmptyTileID when the cell is empty
	XFlip, YFlip, DiagonalFlip bool
}

// EmptyTile returns the sentinel tile used for empty cells and lookup misses.
func EmptyTile() Tile {
	return Tile{ID: EmptyTileID}
}

// IsEmpty reports whether the tile references nothing.
func (t Tile) IsEmpty() bool {
	return t.ID == EmptyTileID
}

// DecodeGID splits a packed tile reference into its id and flip flags.
// A zero id (after masking) decodes to EmptyTile.
func DecodeGID(gid uint32) Tile {
	id := gid & gidMask
	if id == 0 {
		return EmptyTile()
	}

	return Tile{
		ID:           int(id),
		XFlip:        gid&FlagFlippedHorizontally != 0,
		YFlip:        gid&FlagFlippedVertically != 0,
		DiagonalFlip: gid&FlagFlippedDiagonally != 0,
	}
}

// Rectangle is an axis aligned area in pixels.
type Rectangle struct {
	X, Y, Width, Height float64
}

// Empty reports whether the rectangle has zero area.
func (r Rectangle) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Vector2 is a 2D position or offset.
type Vector2 struct {
	X, Y float64
}

// Add returns v translated by o.
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Orientation is the projection used to place grid cells in display space.
type Orientation int

const (
	Orthographic Orientation = iota
	Isometric
)

func (o Orientation) String() string {
	switch o {
	case Isometric:
		return "isometric"
	default:
		return "orthogonal"
	}
}

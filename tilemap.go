package tmx

import (
	"slices"

	opt "github.com/repeale/fp-go/option"
)

// TileMap is a fully loaded map. It owns every sheet, layer and object it
// references and is not modified after Read returns, so it may be shared
// between readers without locking.
//
// Sheets, Layers and Objects are keyed by the ids found in the document.
// When two entries share an id the one parsed last wins. Grid layers and
// object layers live in separate maps.
type TileMap struct {
	Orientation Orientation

	Width, Height         int // Size in cells
	TileWidth, TileHeight int // Cell size in pixels

	Version         string
	TiledVersion    string
	RenderOrder     string
	BackgroundColor string
	Infinite        bool

	Sheets  map[int]*TileSheet
	Layers  map[int]*Layer
	Objects map[int]*Layer

	Properties Properties
}

// NewTileMap returns an empty map ready to be populated.
func NewTileMap() *TileMap {
	return &TileMap{
		Sheets:  make(map[int]*TileSheet),
		Layers:  make(map[int]*Layer),
		Objects: make(map[int]*Layer),
	}
}

// GetTile returns the tile at (x, y) on the grid layer layerID. Unknown
// layers, object layers and out of range cells yield EmptyTile.
func (m *TileMap) GetTile(x, y, layerID int) Tile {
	layer, ok := m.Layers[layerID]
	if !ok || layer == nil {
		return EmptyTile()
	}

	return layer.TileAt(x, y)
}

// SheetIDs returns the ids of all sheets in ascending order.
func (m *TileMap) SheetIDs() []int {
	return sortedKeys(m.Sheets)
}

// LayerIDs returns the ids of all grid layers in ascending order.
func (m *TileMap) LayerIDs() []int {
	return sortedKeys(m.Layers)
}

// ObjectLayerIDs returns the ids of all object layers in ascending order.
func (m *TileMap) ObjectLayerIDs() []int {
	return sortedKeys(m.Objects)
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FindSheet returns the sheet whose id range contains gid.
func (m *TileMap) FindSheet(gid int) opt.Option[*TileSheet] {
	var found *TileSheet
	for _, sheet := range m.Sheets {
		if sheet.StartFrame > gid {
			continue
		}
		if found == nil || sheet.StartFrame > found.StartFrame {
			found = sheet
		}
	}

	if found == nil || !found.Contains(gid) {
		return opt.None[*TileSheet]()
	}
	return opt.Some(found)
}

// FrameFor resolves the sheet and atlas region that depict tile.
func (m *TileMap) FrameFor(tile Tile) (*TileSheet, Rectangle, bool) {
	if tile.IsEmpty() {
		return nil, Rectangle{}, false
	}

	sheet := m.FindSheet(tile.ID)
	if opt.IsNone(sheet) {
		return nil, Rectangle{}, false
	}

	return sheet.Value, sheet.Value.GetFrame(tile.ID), true
}

// LayerByName returns the first layer, grid or object, called name. Grid
// layers are searched first, each set in id order.
func (m *TileMap) LayerByName(name string) opt.Option[*Layer] {
	for _, id := range m.LayerIDs() {
		if m.Layers[id].Name == name {
			return opt.Some(m.Layers[id])
		}
	}
	for _, id := range m.ObjectLayerIDs() {
		if m.Objects[id].Name == name {
			return opt.Some(m.Objects[id])
		}
	}
	return opt.None[*Layer]()
}

// DisplayOrigin is the offset a renderer adds to GetDisplayLocation so that
// the whole map lands at non-negative coordinates. Isometric maps shift right
// by half the map's diamond width; orthographic maps need no shift.
func (m *TileMap) DisplayOrigin() Vector2 {
	if m.Orientation == Isometric {
		return Vector2{X: float64(m.Height*m.TileWidth) / 2}
	}
	return Vector2{}
}

// GetProperty returns the first map property named name, or nil.
func (m *TileMap) GetProperty(name string) *Property {
	return m.Properties.Get(name)
}

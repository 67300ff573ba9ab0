package tmx

import (
	"testing"

	opt "github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMap() *TileMap {
	m := NewTileMap()
	m.Width, m.Height = 2, 2
	m.TileWidth, m.TileHeight = 16, 16

	m.Sheets[1] = &TileSheet{ID: 1, StartFrame: 1, Tiles: make([]Rectangle, 4)}
	m.Sheets[5] = &TileSheet{ID: 5, StartFrame: 5, Tiles: []Rectangle{
		{X: 0, Y: 0, Width: 16, Height: 16},
		{X: 16, Y: 0, Width: 16, Height: 16},
	}}

	m.Layers[3] = &Layer{
		ID:     3,
		Name:   "ground",
		Width:  2,
		Height: 2,
		Tiles:  []Tile{{ID: 1}, {ID: 6, YFlip: true}, EmptyTile(), {ID: 2}},
	}
	m.Layers[1] = &Layer{ID: 1, Name: "back", Width: 2, Height: 2, Tiles: make([]Tile, 4)}
	m.Objects[2] = &Layer{ID: 2, Name: "spawns", IsObject: true}
	return m
}

func TestGetTile(t *testing.T) {
	m := testMap()

	assert.Equal(t, Tile{ID: 1}, m.GetTile(0, 0, 3))
	assert.Equal(t, Tile{ID: 6, YFlip: true}, m.GetTile(1, 0, 3))
	assert.Equal(t, EmptyTile(), m.GetTile(0, 1, 3))

	assert.Equal(t, EmptyTile(), m.GetTile(2, 0, 3))
	assert.Equal(t, EmptyTile(), m.GetTile(-1, 0, 3))
	assert.Equal(t, EmptyTile(), m.GetTile(0, 0, 99))

	// Object layers are not reachable through GetTile.
	assert.Equal(t, EmptyTile(), m.GetTile(0, 0, 2))
}

func TestSortedIDs(t *testing.T) {
	m := testMap()
	assert.Equal(t, []int{1, 5}, m.SheetIDs())
	assert.Equal(t, []int{1, 3}, m.LayerIDs())
	assert.Equal(t, []int{2}, m.ObjectLayerIDs())
	assert.Empty(t, NewTileMap().LayerIDs())
}

func TestFindSheet(t *testing.T) {
	m := testMap()

	sheet := m.FindSheet(4)
	require.True(t, opt.IsSome(sheet))
	assert.Equal(t, 1, sheet.Value.ID)

	sheet = m.FindSheet(6)
	require.True(t, opt.IsSome(sheet))
	assert.Equal(t, 5, sheet.Value.ID)

	assert.True(t, opt.IsNone(m.FindSheet(0)))
	assert.True(t, opt.IsNone(m.FindSheet(7)))
}

func TestFrameFor(t *testing.T) {
	m := testMap()

	sheet, frame, ok := m.FrameFor(Tile{ID: 6, YFlip: true})
	require.True(t, ok)
	assert.Equal(t, 5, sheet.ID)
	assert.Equal(t, Rectangle{X: 16, Width: 16, Height: 16}, frame)

	_, _, ok = m.FrameFor(EmptyTile())
	assert.False(t, ok)
	_, _, ok = m.FrameFor(Tile{ID: 40})
	assert.False(t, ok)
}

func TestLayerByName(t *testing.T) {
	m := testMap()

	layer := m.LayerByName("ground")
	require.True(t, opt.IsSome(layer))
	assert.Equal(t, 3, layer.Value.ID)

	layer = m.LayerByName("spawns")
	require.True(t, opt.IsSome(layer))
	assert.True(t, layer.Value.IsObject)

	assert.True(t, opt.IsNone(m.LayerByName("sky")))
}

func TestDisplayOrigin(t *testing.T) {
	m := testMap()
	assert.Equal(t, Vector2{}, m.DisplayOrigin())

	m.Orientation = Isometric
	m.Height = 3
	m.TileWidth = 64
	assert.Equal(t, Vector2{X: 96}, m.DisplayOrigin())
}

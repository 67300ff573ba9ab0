package render

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retroblast-engine/tmx"
)

func apply(g ebiten.GeoM, x, y float64) tmx.Vector2 {
	ax, ay := g.Apply(x, y)
	return tmx.Vector2{X: ax, Y: ay}
}

func assertNear(t *testing.T, want, got tmx.Vector2) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
}

func TestFlipGeoM(t *testing.T) {
	frame := tmx.Rectangle{Width: 32, Height: 16}

	g := FlipGeoM(tmx.Tile{ID: 1}, frame)
	assertNear(t, tmx.Vector2{X: 5, Y: 3}, apply(g, 5, 3))

	g = FlipGeoM(tmx.Tile{ID: 1, XFlip: true}, frame)
	assertNear(t, tmx.Vector2{X: 32, Y: 0}, apply(g, 0, 0))
	assertNear(t, tmx.Vector2{X: 0, Y: 16}, apply(g, 32, 16))

	g = FlipGeoM(tmx.Tile{ID: 1, YFlip: true}, frame)
	assertNear(t, tmx.Vector2{X: 0, Y: 16}, apply(g, 0, 0))
	assertNear(t, tmx.Vector2{X: 32, Y: 0}, apply(g, 32, 16))

	// The diagonal flip transposes the frame.
	g = FlipGeoM(tmx.Tile{ID: 1, DiagonalFlip: true}, frame)
	assertNear(t, tmx.Vector2{X: 16, Y: 32}, apply(g, 32, 16))
	assertNear(t, tmx.Vector2{X: 3, Y: 5}, apply(g, 5, 3))

	// Every combination keeps the frame inside its transposed or plain box.
	for _, tile := range []tmx.Tile{
		{ID: 1, XFlip: true, DiagonalFlip: true},
		{ID: 1, YFlip: true, DiagonalFlip: true},
		{ID: 1, XFlip: true, YFlip: true, DiagonalFlip: true},
	} {
		g := FlipGeoM(tile, frame)
		for _, corner := range [][2]float64{{0, 0}, {32, 0}, {0, 16}, {32, 16}} {
			p := apply(g, corner[0], corner[1])
			assert.True(t, p.X > -1e-9 && p.X < 16+1e-9, "%+v: %v", tile, p)
			assert.True(t, p.Y > -1e-9 && p.Y < 32+1e-9, "%+v: %v", tile, p)
		}
	}
}

func TestTileGeoM(t *testing.T) {
	frame := tmx.Rectangle{Width: 16, Height: 16}
	g := TileGeoM(tmx.Tile{ID: 1, XFlip: true}, frame, tmx.Vector2{X: 100, Y: 50})
	assertNear(t, tmx.Vector2{X: 116, Y: 50}, apply(g, 0, 0))
}

func TestObjectGeoM(t *testing.T) {
	frame := tmx.Rectangle{Width: 16, Height: 16}
	object := &tmx.Object{
		Tile:   tmx.Tile{ID: 1},
		Bounds: tmx.Rectangle{X: 10, Y: 100, Width: 32, Height: 32},
	}

	// Anchored at the bottom-left corner and scaled to the bounds.
	g := ObjectGeoM(object, frame, tmx.Vector2{})
	assertNear(t, tmx.Vector2{X: 10, Y: 68}, apply(g, 0, 0))
	assertNear(t, tmx.Vector2{X: 42, Y: 100}, apply(g, 16, 16))

	g = ObjectGeoM(object, frame, tmx.Vector2{X: 5, Y: 5})
	assertNear(t, tmx.Vector2{X: 15, Y: 73}, apply(g, 0, 0))

	// Rotation turns clockwise around the anchor.
	object.Rotation = 90
	g = ObjectGeoM(object, frame, tmx.Vector2{})
	assertNear(t, tmx.Vector2{X: 10, Y: 100}, apply(g, 0, 16))
	assertNear(t, tmx.Vector2{X: 42, Y: 100}, apply(g, 0, 0))
}

func TestLoadAtlases(t *testing.T) {
	m := tmx.NewTileMap()
	m.Sheets[1] = &tmx.TileSheet{ID: 1, Source: "terrain.png"}
	m.Sheets[9] = &tmx.TileSheet{ID: 9, Source: "terrain.png"}
	m.Sheets[20] = &tmx.TileSheet{ID: 20, Images: []string{"tree.png", "", "rock.png"}}

	var loaded []string
	atlases, err := LoadAtlases(m, func(source string) (*ebiten.Image, error) {
		loaded = append(loaded, source)
		return nil, nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"terrain.png", "tree.png", "rock.png"}, loaded)
	assert.Len(t, atlases, 3)

	boom := errors.New("boom")
	_, err = LoadAtlases(m, func(string) (*ebiten.Image, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

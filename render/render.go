// Package render draws maps loaded by tmx onto ebiten images. It is a thin
// consumer of the lookups tmx provides: frames come from TileSheet.GetFrame,
// positions from Layer.GetDisplayLocation.
package render

import (
	"fmt"
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/retroblast-engine/tmx"
)

// Atlases maps image paths, as recorded by the sheets, to loaded images.
type Atlases map[string]*ebiten.Image

// LoadAtlases loads every image referenced by m's sheets exactly once.
func LoadAtlases(m *tmx.TileMap, load func(source string) (*ebiten.Image, error)) (Atlases, error) {
	atlases := make(Atlases)

	for _, id := range m.SheetIDs() {
		sheet := m.Sheets[id]

		sources := sheet.Images
		if sources == nil {
			sources = []string{sheet.Source}
		}

		for _, source := range sources {
			if source == "" {
				continue
			}
			if _, ok := atlases[source]; ok {
				continue
			}

			img, err := load(source)
			if err != nil {
				return nil, fmt.Errorf("failed to load atlas %s: %w", source, err)
			}
			atlases[source] = img
		}
	}

	return atlases, nil
}

// FlipGeoM returns the transform that applies tile's flip flags to a frame
// of the given size, keeping the result anchored at the origin. The diagonal
// flip is applied first, then the horizontal and vertical ones.
func FlipGeoM(tile tmx.Tile, frame tmx.Rectangle) ebiten.GeoM {
	var g ebiten.GeoM

	w, h := frame.Width, frame.Height
	if tile.DiagonalFlip {
		g.SetElement(0, 0, 0)
		g.SetElement(0, 1, 1)
		g.SetElement(1, 0, 1)
		g.SetElement(1, 1, 0)
		w, h = h, w
	}
	if tile.XFlip {
		g.Scale(-1, 1)
		g.Translate(w, 0)
	}
	if tile.YFlip {
		g.Scale(1, -1)
		g.Translate(0, h)
	}

	return g
}

// TileGeoM is FlipGeoM followed by a move to pos.
func TileGeoM(tile tmx.Tile, frame tmx.Rectangle, pos tmx.Vector2) ebiten.GeoM {
	g := FlipGeoM(tile, frame)
	g.Translate(pos.X, pos.Y)
	return g
}

// frameImage cuts frame out of atlas.
func frameImage(atlas *ebiten.Image, frame tmx.Rectangle) *ebiten.Image {
	r := image.Rect(
		int(frame.X),
		int(frame.Y),
		int(frame.X+frame.Width),
		int(frame.Y+frame.Height),
	)
	return atlas.SubImage(r).(*ebiten.Image)
}

// resolve finds the image and frame that depict tile.
func resolve(m *tmx.TileMap, atlases Atlases, tile tmx.Tile) (*ebiten.Image, tmx.Rectangle, bool) {
	sheet, frame, ok := m.FrameFor(tile)
	if !ok || frame.Empty() {
		return nil, tmx.Rectangle{}, false
	}

	atlas, ok := atlases[sheet.ImageFor(tile.ID)]
	if !ok || atlas == nil {
		return nil, tmx.Rectangle{}, false
	}

	return frameImage(atlas, frame), frame, true
}

// DrawLayer draws every tile of a grid layer onto dst. Frames taller than
// the cell are aligned to the cell's bottom edge.
func DrawLayer(dst *ebiten.Image, m *tmx.TileMap, layer *tmx.Layer, atlases Atlases, origin tmx.Vector2) {
	if layer.IsObject {
		return
	}

	origin = origin.Add(tmx.Vector2{X: layer.OffsetX, Y: layer.OffsetY})

	for y := 0; y < layer.Height; y++ {
		for x := 0; x < layer.Width; x++ {
			tile := layer.TileAt(x, y)
			if tile.IsEmpty() {
				continue
			}

			img, frame, ok := resolve(m, atlases, tile)
			if !ok {
				continue
			}

			pos := layer.GetDisplayLocation(x, y, m.Orientation).Add(origin)
			pos.Y += float64(layer.TileHeight) - frame.Height

			opts := &ebiten.DrawImageOptions{GeoM: TileGeoM(tile, frame, pos)}
			opts.ColorScale.ScaleAlpha(float32(layer.Opacity))
			dst.DrawImage(img, opts)
		}
	}
}

// ObjectGeoM places a tile object's frame. Tile objects are anchored at
// their bottom-left corner, scaled to their bounds and rotated around that
// anchor.
func ObjectGeoM(object *tmx.Object, frame tmx.Rectangle, origin tmx.Vector2) ebiten.GeoM {
	g := FlipGeoM(object.Tile, frame)

	height := frame.Height
	if object.Bounds.Width > 0 && object.Bounds.Height > 0 && !frame.Empty() {
		g.Scale(object.Bounds.Width/frame.Width, object.Bounds.Height/frame.Height)
		height = object.Bounds.Height
	}

	g.Translate(0, -height)
	g.Rotate(object.Rotation * math.Pi / 180)
	g.Translate(origin.X+object.Bounds.X, origin.Y+object.Bounds.Y)
	return g
}

// DrawObjects draws the visible tile objects of an object layer. Shapes and
// text are left to the caller.
func DrawObjects(dst *ebiten.Image, m *tmx.TileMap, layer *tmx.Layer, atlases Atlases, origin tmx.Vector2) {
	if !layer.IsObject {
		return
	}

	origin = origin.Add(tmx.Vector2{X: layer.OffsetX, Y: layer.OffsetY})

	for i := range layer.Objects {
		object := &layer.Objects[i]
		if !object.Visible || !object.IsTile() {
			continue
		}

		img, frame, ok := resolve(m, atlases, object.Tile)
		if !ok {
			continue
		}

		opts := &ebiten.DrawImageOptions{GeoM: ObjectGeoM(object, frame, origin)}
		opts.ColorScale.ScaleAlpha(float32(layer.Opacity))
		dst.DrawImage(img, opts)
	}
}

// DrawMap draws all visible grid layers, then all visible object layers,
// each in id order.
func DrawMap(dst *ebiten.Image, m *tmx.TileMap, atlases Atlases) {
	origin := m.DisplayOrigin()

	for _, id := range m.LayerIDs() {
		if layer := m.Layers[id]; layer.Visible {
			DrawLayer(dst, m, layer, atlases, origin)
		}
	}

	for _, id := range m.ObjectLayerIDs() {
		if layer := m.Objects[id]; layer.Visible {
			DrawObjects(dst, m, layer, atlases, origin)
		}
	}
}

package tmx

import "fmt"

// maxSheetTiles bounds the number of frames a single sheet may hold.
const maxSheetTiles = 1 << 20

// TileSheet maps tile ids to regions of a shared source image.
type TileSheet struct {
	ID         int    // Unique key in TileMap.Sheets, equal to StartFrame
	Name       string
	Source     string // Path of the atlas image, relative to the document that declared it
	StartFrame int    // Tile id of Tiles[0] (the sheet's first GID)

	TileWidth, TileHeight   int
	Columns, Margin         int
	Spacing                 int
	ImageWidth, ImageHeight int

	Tiles []Rectangle

	// Images holds one image path per tile for image collection sheets.
	// It is nil for sheets cut from a single atlas.
	Images []string

	Properties Properties
	// TileProperties holds the properties of individual tiles, keyed by
	// their index in the sheet (tile id minus StartFrame).
	TileProperties map[int]Properties
}

// GetFrame returns the atlas region for tileID, or a zero Rectangle when the
// id does not belong to this sheet.
func (s *TileSheet) GetFrame(tileID int) Rectangle {
	index := tileID - s.StartFrame
	if index >= 0 && index < len(s.Tiles) {
		return s.Tiles[index]
	}

	return Rectangle{}
}

// Contains reports whether tileID falls inside this sheet's id range.
func (s *TileSheet) Contains(tileID int) bool {
	index := tileID - s.StartFrame
	return index >= 0 && index < len(s.Tiles)
}

// ImageFor returns the image that holds tileID's frame.
func (s *TileSheet) ImageFor(tileID int) string {
	index := tileID - s.StartFrame
	if s.Images != nil && index >= 0 && index < len(s.Images) {
		return s.Images[index]
	}

	return s.Source
}

// PropertiesOf returns the properties attached to tileID, nil if it has none.
func (s *TileSheet) PropertiesOf(tileID int) Properties {
	if !s.Contains(tileID) {
		return nil
	}
	return s.TileProperties[tileID-s.StartFrame]
}

// sliceAtlas cuts a uniform grid of frames out of the sheet's image using the
// Tiled layout rules for margin and spacing. Missing column and tile counts are
// derived from the image size, and a tile count larger than the image holds
// is clamped to it. The column count actually used is returned with the
// frames.
func sliceAtlas(tileWidth, tileHeight, margin, spacing, columns, count, imageWidth, imageHeight int) ([]Rectangle, int, error) {
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, columns, nil
	}

	strideX := tileWidth + spacing
	strideY := tileHeight + spacing
	if strideX <= 0 || strideY <= 0 {
		return nil, 0, fmt.Errorf("%w: spacing %d leaves no room for tiles", ErrMalformed, spacing)
	}

	if columns <= 0 && imageWidth > 0 {
		columns = (imageWidth - 2*margin + spacing) / strideX
	}
	if columns <= 0 {
		return nil, 0, nil
	}
	if columns > maxSheetTiles {
		return nil, 0, fmt.Errorf("%w: %d columns", ErrMalformed, columns)
	}

	if imageHeight > 0 {
		rows := max((imageHeight-2*margin+spacing)/strideY, 0)
		if rows > maxSheetTiles {
			return nil, 0, fmt.Errorf("%w: %d rows", ErrMalformed, rows)
		}
		if count <= 0 || count > rows*columns {
			count = rows * columns
		}
	}
	if count <= 0 {
		return nil, columns, nil
	}
	if count > maxSheetTiles {
		return nil, 0, fmt.Errorf("%w: %d tiles", ErrMalformed, count)
	}

	frames := make([]Rectangle, count)
	for i := range frames {
		col := i % columns
		row := i / columns
		frames[i] = Rectangle{
			X:      float64(margin + col*strideX),
			Y:      float64(margin + row*strideY),
			Width:  float64(tileWidth),
			Height: float64(tileHeight),
		}
	}

	return frames, columns, nil
}

package tmx

import (
	"encoding/json"
	"fmt"
	"image/color"
	"path"
	"strconv"
	"strings"
)

// builder assembles a TileMap from a decoded document. Problems that do not
// prevent establishing the map geometry are logged and the offending element
// is skipped, unless the reader runs in strict mode.
type builder struct {
	*config

	m           *TileMap
	nextLayerID int
}

// inherited carries the state a group passes down to its children.
type inherited struct {
	offsetX, offsetY float64
	opacity          float64
	visible          bool
}

func (b *builder) build(doc *docMap) (*TileMap, error) {
	if doc.Width <= 0 || doc.Height <= 0 || doc.TileWidth <= 0 || doc.TileHeight <= 0 {
		return nil, fmt.Errorf(
			"%w: %dx%d cells of %dx%d pixels",
			ErrInvalidGeometry,
			doc.Width, doc.Height,
			doc.TileWidth, doc.TileHeight,
		)
	}

	b.m = NewTileMap()
	b.m.Width = doc.Width
	b.m.Height = doc.Height
	b.m.TileWidth = doc.TileWidth
	b.m.TileHeight = doc.TileHeight
	b.m.Version = doc.Version
	b.m.TiledVersion = doc.TiledVersion
	b.m.RenderOrder = doc.RenderOrder
	b.m.BackgroundColor = doc.BackgroundColor
	b.m.Infinite = doc.Infinite
	b.m.Properties = convertProperties(doc.Properties)

	switch doc.Orientation {
	case "", "orthogonal":
		b.m.Orientation = Orthographic
	case "isometric":
		b.m.Orientation = Isometric
	default:
		err := fmt.Errorf("%w: unsupported orientation %q", ErrMalformed, doc.Orientation)
		if err := b.skip(err, "reading map as orthogonal"); err != nil {
			return nil, err
		}
		b.m.Orientation = Orthographic
	}

	for _, tileset := range doc.Tilesets {
		sheet, err := b.sheet(tileset)
		if err != nil {
			if err := b.skip(err, "skipping tileset"); err != nil {
				return nil, err
			}
			continue
		}
		b.m.Sheets[sheet.ID] = sheet
	}

	b.nextLayerID = maxLayerID(doc.Layers) + 1
	top := inherited{opacity: 1, visible: true}
	if err := b.layers(doc.Layers, top); err != nil {
		return nil, err
	}

	return b.m, nil
}

// skip logs err and returns nil, or returns err itself in strict mode.
func (b *builder) skip(err error, msg string) error {
	if b.strict {
		return err
	}
	b.logger.Warn().Err(err).Msg(msg)
	return nil
}

func (b *builder) sheet(tileset docTileset) (*TileSheet, error) {
	firstGID := tileset.FirstGID
	if firstGID <= 0 {
		return nil, fmt.Errorf("%w: tileset %q has no firstgid", ErrMalformed, tileset.Name)
	}

	base := ""
	if tileset.Source != "" {
		external, err := b.externalTileset(tileset.Source)
		if err != nil {
			return nil, err
		}
		base = path.Dir(tileset.Source)
		tileset = *external
	}

	sheet := &TileSheet{
		ID:         firstGID,
		StartFrame: firstGID,
		Name:       tileset.Name,
		TileWidth:  tileset.TileWidth,
		TileHeight: tileset.TileHeight,
		Margin:     tileset.Margin,
		Spacing:    tileset.Spacing,
		Columns:    tileset.Columns,
		Properties: convertProperties(tileset.Properties),
	}

	for _, tile := range tileset.Tiles {
		if len(tile.Properties) == 0 {
			continue
		}
		if sheet.TileProperties == nil {
			sheet.TileProperties = make(map[int]Properties)
		}
		sheet.TileProperties[tile.ID] = convertProperties(tile.Properties)
	}

	if tileset.Image != nil {
		sheet.Source = resolvePath(base, tileset.Image.Source)
		sheet.ImageWidth = tileset.Image.Width
		sheet.ImageHeight = tileset.Image.Height

		var err error
		sheet.Tiles, sheet.Columns, err = sliceAtlas(
			tileset.TileWidth, tileset.TileHeight,
			tileset.Margin, tileset.Spacing,
			tileset.Columns, tileset.TileCount,
			tileset.Image.Width, tileset.Image.Height,
		)
		if err != nil {
			return nil, fmt.Errorf("tileset %q: %w", tileset.Name, err)
		}
		return sheet, nil
	}

	// Image collection: every tile brings its own image and ids may be sparse.
	count := 0
	for _, tile := range tileset.Tiles {
		if tile.Image == nil {
			continue
		}
		if tile.ID >= maxSheetTiles {
			return nil, fmt.Errorf("%w: tileset %q has tile id %d", ErrMalformed, tileset.Name, tile.ID)
		}
		if tile.ID >= count {
			count = tile.ID + 1
		}
	}

	sheet.Tiles = make([]Rectangle, count)
	sheet.Images = make([]string, count)
	for _, tile := range tileset.Tiles {
		if tile.Image == nil || tile.ID < 0 {
			continue
		}
		sheet.Tiles[tile.ID] = Rectangle{
			Width:  float64(tile.Image.Width),
			Height: float64(tile.Image.Height),
		}
		sheet.Images[tile.ID] = resolvePath(base, tile.Image.Source)
	}

	return sheet, nil
}

func (b *builder) externalTileset(source string) (*docTileset, error) {
	data, err := b.root.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read tileset %s: %w", source, err)
	}

	var tileset *docTileset
	switch Sniff(data) {
	case FormatXML:
		tileset, err = decodeTSX(data)
	case FormatJSON:
		tileset, err = decodeTSJ(data)
	default:
		return nil, fmt.Errorf("tileset %s: %w", source, ErrUnknownFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: tileset %s: %v", ErrMalformed, source, err)
	}

	return tileset, nil
}

// resolvePath makes p, relative to a referenced document in base, relative
// to the map instead.
func resolvePath(base, p string) string {
	if base == "" || base == "." || p == "" || path.IsAbs(p) {
		return p
	}
	return path.Join(base, p)
}

func maxLayerID(layers []docLayer) int {
	highest := 0
	for _, layer := range layers {
		highest = max(highest, layer.ID, maxLayerID(layer.Layers))
	}
	return highest
}

func (b *builder) layers(layers []docLayer, parent inherited) error {
	for i := range layers {
		l := &layers[i]

		id := l.ID
		if id <= 0 {
			id = b.nextLayerID
			b.nextLayerID++
		}

		state := inherited{
			offsetX: parent.offsetX + l.OffsetX,
			offsetY: parent.offsetY + l.OffsetY,
			opacity: parent.opacity * l.Opacity,
			visible: parent.visible && l.Visible,
		}

		switch l.Kind {
		case kindGroup:
			if err := b.layers(l.Layers, state); err != nil {
				return err
			}
		case kindTileLayer:
			layer, err := b.tileLayer(l, id, state)
			if err != nil {
				if err := b.skip(err, "skipping layer"); err != nil {
					return err
				}
				continue
			}
			b.m.Layers[id] = layer
		case kindObjectGroup:
			layer, err := b.objectLayer(l, id, state)
			if err != nil {
				return err
			}
			b.m.Objects[id] = layer
		case kindImageLayer:
			b.logger.Debug().Int("layer", id).Str("name", l.Name).Msg("ignoring image layer")
		default:
			err := fmt.Errorf("%w: unknown layer kind %q", ErrMalformed, l.Kind)
			if err := b.skip(err, "skipping layer"); err != nil {
				return err
			}
		}
	}

	return nil
}

func (b *builder) newLayer(l *docLayer, id int, state inherited) *Layer {
	layer := &Layer{
		ID:         id,
		Name:       l.Name,
		Width:      l.Width,
		Height:     l.Height,
		TileWidth:  b.m.TileWidth,
		TileHeight: b.m.TileHeight,
		Visible:    state.visible,
		Opacity:    state.opacity,
		OffsetX:    state.offsetX,
		OffsetY:    state.offsetY,
		Properties: convertProperties(l.Properties),
	}
	if layer.Width <= 0 {
		layer.Width = b.m.Width
	}
	if layer.Height <= 0 {
		layer.Height = b.m.Height
	}
	return layer
}

// maxLayerCells bounds the number of cells a single grid layer may hold.
const maxLayerCells = 1 << 24

func checkGridSize(width, height int) error {
	if width <= 0 || height <= 0 || width > maxLayerCells/height {
		return fmt.Errorf("%w: grid of %dx%d cells", ErrMalformed, width, height)
	}
	return nil
}

func (b *builder) tileLayer(l *docLayer, id int, state inherited) (*Layer, error) {
	layer := b.newLayer(l, id, state)
	if err := checkGridSize(layer.Width, layer.Height); err != nil {
		return nil, fmt.Errorf("layer %d: %w", id, err)
	}
	if l.Data == nil {
		return nil, fmt.Errorf("%w: layer %d has no data", ErrMalformed, id)
	}

	tiles, err := b.tiles(l.Data, layer.Width, layer.Height)
	if err != nil {
		return nil, fmt.Errorf("layer %d: %w", id, err)
	}
	layer.Tiles = tiles

	return layer, nil
}

// tiles decodes a layer's cells in row-major order. Chunked (infinite) data is
// placed relative to the layer origin; cells falling outside the layer are
// dropped.
func (b *builder) tiles(data *docData, width, height int) ([]Tile, error) {
	if len(data.Chunks) == 0 {
		gids, err := dataGIDs(data.raw, data.Tiles, data.Encoding, data.Compression, data.Content)
		if err != nil {
			return nil, err
		}
		if len(gids) != width*height {
			return nil, fmt.Errorf("%w: got %d tiles, want %d", ErrMalformed, len(gids), width*height)
		}
		return tilesFromGIDs(gids), nil
	}

	grid := make([]Tile, width*height)
	for i := range grid {
		grid[i] = EmptyTile()
	}

	dropped := 0
	for _, chunk := range data.Chunks {
		if err := checkGridSize(chunk.Width, chunk.Height); err != nil {
			return nil, fmt.Errorf("chunk at %d,%d: %w", chunk.X, chunk.Y, err)
		}

		gids, err := dataGIDs(chunk.raw, chunk.Tiles, data.Encoding, data.Compression, chunk.Content)
		if err != nil {
			return nil, err
		}
		if len(gids) != chunk.Width*chunk.Height {
			return nil, fmt.Errorf(
				"%w: chunk at %d,%d has %d tiles, want %d",
				ErrMalformed, chunk.X, chunk.Y, len(gids), chunk.Width*chunk.Height,
			)
		}

		for i, gid := range gids {
			x := chunk.X + i%chunk.Width
			y := chunk.Y + i/chunk.Width
			if x < 0 || y < 0 || x >= width || y >= height {
				if gid != 0 {
					dropped++
				}
				continue
			}
			grid[y*width+x] = DecodeGID(gid)
		}
	}

	if dropped > 0 {
		b.logger.Warn().Int("tiles", dropped).Msg("dropped chunk tiles outside the layer")
	}

	return grid, nil
}

// dataGIDs decodes the tile stream of a layer or chunk. TMJ documents carry
// it in raw; TMX documents use encoded content or <tile> elements.
func dataGIDs(raw json.RawMessage, tiles []docDataTile, encoding, compression, content string) ([]uint32, error) {
	if len(raw) > 0 {
		gids, text, err := splitJSONData(raw)
		if err != nil {
			return nil, err
		}
		if gids != nil {
			return gids, nil
		}
		content = text
	}

	if encoding == EncodingXML {
		gids := make([]uint32, len(tiles))
		for i, tile := range tiles {
			if tile.GID == "" {
				continue
			}
			gid, err := strconv.ParseUint(strings.TrimSpace(tile.GID), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid tile gid %q", ErrMalformed, tile.GID)
			}
			gids[i] = uint32(gid)
		}
		return gids, nil
	}

	return decodeTileData(encoding, compression, content)
}

func (b *builder) objectLayer(l *docLayer, id int, state inherited) (*Layer, error) {
	layer := b.newLayer(l, id, state)
	layer.IsObject = true
	layer.Objects = make([]Object, 0, len(l.Objects))

	for _, o := range l.Objects {
		object, err := b.object(o)
		if err != nil {
			if err := b.skip(err, "skipping object"); err != nil {
				return nil, err
			}
			continue
		}
		layer.Objects = append(layer.Objects, object)
	}

	return layer, nil
}

func (b *builder) object(o docObject) (Object, error) {
	object := Object{
		ID:   o.ID,
		Name: o.Name,
		Type: o.Type,
		Bounds: Rectangle{
			X:      o.X,
			Y:      o.Y,
			Width:  o.Width,
			Height: o.Height,
		},
		Rotation:   o.Rotation,
		Tile:       DecodeGID(o.GID),
		Visible:    o.Visible == nil || *o.Visible != 0,
		Template:   o.Template,
		Properties: convertProperties(o.Properties),
	}
	if object.Type == "" {
		object.Type = o.Class
	}

	if o.Template != "" {
		b.logger.Debug().
			Int("object", o.ID).
			Str("template", o.Template).
			Msg("object template not expanded")
	}

	switch {
	case o.Ellipse != nil:
		object.Kind = KindEllipse
	case o.Point != nil:
		object.Kind = KindPoint
		object.Shape = &PointShape{Point: Vector2{X: o.X, Y: o.Y}}
	case o.Polygon != nil:
		points, err := polyPoints(o.Polygon, o.polygon)
		if err != nil {
			return Object{}, fmt.Errorf("object %d: %w", o.ID, err)
		}
		object.Kind = KindPolygon
		object.Shape = &PolyShape{Points: points}
	case o.Polyline != nil:
		points, err := polyPoints(o.Polyline, o.polyline)
		if err != nil {
			return Object{}, fmt.Errorf("object %d: %w", o.ID, err)
		}
		object.Kind = KindPolyline
		object.Shape = &PolyShape{Points: points}
	case o.Text != nil:
		object.Kind = KindText
		object.Shape = textShape(o.Text)
	}

	return object, nil
}

// polyPoints parses a TMX points attribute ("x1,y1 x2,y2 ...").
func polyPoints(p *docPoints, parsed []Vector2) ([]Vector2, error) {
	if parsed != nil {
		return parsed, nil
	}

	fields := strings.Fields(p.Points)
	points := make([]Vector2, 0, len(fields))
	for _, field := range fields {
		xs, ys, ok := strings.Cut(field, ",")
		if !ok {
			return nil, fmt.Errorf("%w: invalid point %q", ErrMalformed, field)
		}

		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid point %q", ErrMalformed, field)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid point %q", ErrMalformed, field)
		}

		points = append(points, Vector2{X: x, Y: y})
	}

	return points, nil
}

// Defaults of the text element. They follow the Tiled format: 16 px
// sans-serif in opaque black.
const (
	defaultFontFamily = "sans-serif"
	defaultFontSize   = 16
)

func textShape(t *docText) *TextShape {
	text := &TextShape{
		Text:       t.Text,
		Color:      color.RGBA{A: 0xff},
		Wrap:       t.Wrap != 0,
		FontSize:   defaultFontSize,
		FontFamily: t.FontFamily,
		Bold:       t.Bold != 0,
		Italic:     t.Italic != 0,
		Underline:  t.Underline != 0,
		Strikeout:  t.Strikeout != 0,
		Kerning:    t.Kerning == nil || *t.Kerning != 0,
		HAlign:     t.HAlign,
		VAlign:     t.VAlign,
	}

	if t.PixelSize != nil {
		text.FontSize = *t.PixelSize
	}
	if text.FontFamily == "" {
		text.FontFamily = defaultFontFamily
	}
	if text.HAlign == "" {
		text.HAlign = "left"
	}
	if text.VAlign == "" {
		text.VAlign = "top"
	}
	if c, ok := ParseColor(t.Color); ok {
		text.Color = c
	}

	return text
}

// ParseColor reads a Tiled color, "#RRGGBB" or "#AARRGGBB" with the hash
// optional.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, false
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}

	c := color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}
	if len(s) == 8 {
		c.A = uint8(v >> 24)
	}
	return c, true
}

func convertProperties(props []docProperty) Properties {
	if len(props) == 0 {
		return nil
	}

	converted := make(Properties, len(props))
	for i, p := range props {
		converted[i] = Property{Name: p.Name, Type: p.Type, Value: p.Value}
		if converted[i].Type == "" {
			converted[i].Type = PropertyString
		}
		if converted[i].Value == "" && strings.TrimSpace(p.Text) != "" {
			converted[i].Value = p.Text
		}
	}
	return converted
}

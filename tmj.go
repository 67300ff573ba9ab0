package tmx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type jsonProperty struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type jsonTile struct {
	ID          int            `json:"id"`
	Image       string         `json:"image"`
	ImageWidth  int            `json:"imagewidth"`
	ImageHeight int            `json:"imageheight"`
	Properties  []jsonProperty `json:"properties"`
}

type jsonTileset struct {
	FirstGID    int            `json:"firstgid"`
	Source      string         `json:"source"`
	Name        string         `json:"name"`
	TileWidth   int            `json:"tilewidth"`
	TileHeight  int            `json:"tileheight"`
	Spacing     int            `json:"spacing"`
	Margin      int            `json:"margin"`
	TileCount   int            `json:"tilecount"`
	Columns     int            `json:"columns"`
	Image       string         `json:"image"`
	ImageWidth  int            `json:"imagewidth"`
	ImageHeight int            `json:"imageheight"`
	Tiles       []jsonTile     `json:"tiles"`
	Properties  []jsonProperty `json:"properties"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type jsonText struct {
	Text       string `json:"text"`
	FontFamily string `json:"fontfamily"`
	PixelSize  *int   `json:"pixelsize"`
	Wrap       bool   `json:"wrap"`
	Color      string `json:"color"`
	Bold       bool   `json:"bold"`
	Italic     bool   `json:"italic"`
	Underline  bool   `json:"underline"`
	Strikeout  bool   `json:"strikeout"`
	Kerning    *bool  `json:"kerning"`
	HAlign     string `json:"halign"`
	VAlign     string `json:"valign"`
}

type jsonObject struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Class      string         `json:"class"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	Rotation   float64        `json:"rotation"`
	GID        uint32         `json:"gid"`
	Visible    *bool          `json:"visible"`
	Template   string         `json:"template"`
	Ellipse    bool           `json:"ellipse"`
	Point      bool           `json:"point"`
	Polygon    []jsonPoint    `json:"polygon"`
	Polyline   []jsonPoint    `json:"polyline"`
	Text       *jsonText      `json:"text"`
	Properties []jsonProperty `json:"properties"`
}

type jsonChunk struct {
	X      int             `json:"x"`
	Y      int             `json:"y"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Data   json.RawMessage `json:"data"`
}

type jsonLayer struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Visible     *bool           `json:"visible"`
	Opacity     *float64        `json:"opacity"`
	OffsetX     float64         `json:"offsetx"`
	OffsetY     float64         `json:"offsety"`
	Encoding    string          `json:"encoding"`
	Compression string          `json:"compression"`
	Data        json.RawMessage `json:"data"`
	Chunks      []jsonChunk     `json:"chunks"`
	Objects     []jsonObject    `json:"objects"`
	Layers      []jsonLayer     `json:"layers"`
	Properties  []jsonProperty  `json:"properties"`
}

type jsonMap struct {
	Version         any            `json:"version"`
	TiledVersion    string         `json:"tiledversion"`
	Orientation     string         `json:"orientation"`
	RenderOrder     string         `json:"renderorder"`
	BackgroundColor string         `json:"backgroundcolor"`
	Infinite        bool           `json:"infinite"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	TileWidth       int            `json:"tilewidth"`
	TileHeight      int            `json:"tileheight"`
	Properties      []jsonProperty `json:"properties"`
	Tilesets        []jsonTileset  `json:"tilesets"`
	Layers          []jsonLayer    `json:"layers"`
}

var jsonLayerKinds = map[string]string{
	"tilelayer":   kindTileLayer,
	"objectgroup": kindObjectGroup,
	"imagelayer":  kindImageLayer,
	"group":       kindGroup,
}

func decodeTMJ(data []byte) (*docMap, error) {
	var m jsonMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	doc := &docMap{
		TiledVersion:    m.TiledVersion,
		Orientation:     m.Orientation,
		RenderOrder:     m.RenderOrder,
		BackgroundColor: m.BackgroundColor,
		Infinite:        m.Infinite,
		Width:           m.Width,
		Height:          m.Height,
		TileWidth:       m.TileWidth,
		TileHeight:      m.TileHeight,
		Properties:      convertJSONProperties(m.Properties),
	}
	if m.Version != nil {
		doc.Version = fmt.Sprint(m.Version)
	}
	if doc.Orientation == "" {
		doc.Orientation = "orthogonal"
	}

	for _, tileset := range m.Tilesets {
		doc.Tilesets = append(doc.Tilesets, tileset.toDoc())
	}

	for _, layer := range m.Layers {
		doc.Layers = append(doc.Layers, layer.toDoc())
	}

	return doc, nil
}

func decodeTSJ(data []byte) (*docTileset, error) {
	var tileset jsonTileset
	if err := json.Unmarshal(data, &tileset); err != nil {
		return nil, err
	}

	converted := tileset.toDoc()
	return &converted, nil
}

func (t jsonTileset) toDoc() docTileset {
	tileset := docTileset{
		FirstGID:   t.FirstGID,
		Source:     t.Source,
		Name:       t.Name,
		TileWidth:  t.TileWidth,
		TileHeight: t.TileHeight,
		Spacing:    t.Spacing,
		Margin:     t.Margin,
		TileCount:  t.TileCount,
		Columns:    t.Columns,
		Properties: convertJSONProperties(t.Properties),
	}
	if t.Image != "" {
		tileset.Image = &docImage{Source: t.Image, Width: t.ImageWidth, Height: t.ImageHeight}
	}

	for _, tile := range t.Tiles {
		converted := docTilesetTile{
			ID:         tile.ID,
			Properties: convertJSONProperties(tile.Properties),
		}
		if tile.Image != "" {
			converted.Image = &docImage{Source: tile.Image, Width: tile.ImageWidth, Height: tile.ImageHeight}
		}
		tileset.Tiles = append(tileset.Tiles, converted)
	}

	return tileset
}

func (l jsonLayer) toDoc() docLayer {
	kind, ok := jsonLayerKinds[l.Type]
	if !ok {
		kind = l.Type
	}

	layer := docLayer{
		Kind:       kind,
		ID:         l.ID,
		Name:       l.Name,
		Width:      l.Width,
		Height:     l.Height,
		Visible:    l.Visible == nil || *l.Visible,
		Opacity:    1,
		OffsetX:    l.OffsetX,
		OffsetY:    l.OffsetY,
		Properties: convertJSONProperties(l.Properties),
	}
	if l.Opacity != nil {
		layer.Opacity = *l.Opacity
	}

	if kind == kindTileLayer {
		data := &docData{Encoding: l.Encoding, Compression: l.Compression, raw: l.Data}
		for _, chunk := range l.Chunks {
			data.Chunks = append(data.Chunks, docChunk{
				X:      chunk.X,
				Y:      chunk.Y,
				Width:  chunk.Width,
				Height: chunk.Height,
				raw:    chunk.Data,
			})
		}
		layer.Data = data
	}

	for _, object := range l.Objects {
		layer.Objects = append(layer.Objects, object.toDoc())
	}

	for _, child := range l.Layers {
		layer.Layers = append(layer.Layers, child.toDoc())
	}

	return layer
}

// splitJSONData reads a TMJ data field, which is either an array of GIDs or
// an encoded string.
func splitJSONData(raw json.RawMessage) ([]uint32, string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, "", nil
	}

	if raw[0] == '"' {
		var content string
		if err := json.Unmarshal(raw, &content); err != nil {
			return nil, "", fmt.Errorf("%w: invalid layer data: %v", ErrMalformed, err)
		}
		return nil, content, nil
	}

	gids := []uint32{}
	if err := json.Unmarshal(raw, &gids); err != nil {
		return nil, "", fmt.Errorf("%w: invalid layer data: %v", ErrMalformed, err)
	}
	return gids, "", nil
}

func (o jsonObject) toDoc() docObject {
	object := docObject{
		ID:         o.ID,
		Name:       o.Name,
		Type:       o.Type,
		Class:      o.Class,
		X:          o.X,
		Y:          o.Y,
		Width:      o.Width,
		Height:     o.Height,
		Rotation:   o.Rotation,
		GID:        o.GID,
		Template:   o.Template,
		Properties: convertJSONProperties(o.Properties),
	}

	if o.Visible != nil {
		visible := 0
		if *o.Visible {
			visible = 1
		}
		object.Visible = &visible
	}

	switch {
	case o.Ellipse:
		object.Ellipse = &struct{}{}
	case o.Point:
		object.Point = &struct{}{}
	case o.Polygon != nil:
		object.Polygon = &docPoints{}
		object.polygon = convertJSONPoints(o.Polygon)
	case o.Polyline != nil:
		object.Polyline = &docPoints{}
		object.polyline = convertJSONPoints(o.Polyline)
	case o.Text != nil:
		object.Text = o.Text.toDoc()
	}

	return object
}

func (t *jsonText) toDoc() *docText {
	text := &docText{
		FontFamily: t.FontFamily,
		PixelSize:  t.PixelSize,
		Wrap:       boolToInt(t.Wrap),
		Color:      t.Color,
		Bold:       boolToInt(t.Bold),
		Italic:     boolToInt(t.Italic),
		Underline:  boolToInt(t.Underline),
		Strikeout:  boolToInt(t.Strikeout),
		HAlign:     t.HAlign,
		VAlign:     t.VAlign,
		Text:       t.Text,
	}
	if t.Kerning != nil {
		kerning := boolToInt(*t.Kerning)
		text.Kerning = &kerning
	}
	return text
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func convertJSONPoints(points []jsonPoint) []Vector2 {
	converted := make([]Vector2, len(points))
	for i, p := range points {
		converted[i] = Vector2{X: p.X, Y: p.Y}
	}
	return converted
}

// convertJSONProperties stores every value as text, the way TMX does.
func convertJSONProperties(props []jsonProperty) []docProperty {
	if len(props) == 0 {
		return nil
	}

	converted := make([]docProperty, len(props))
	for i, p := range props {
		converted[i] = docProperty{Name: p.Name, Type: p.Type}

		switch v := p.Value.(type) {
		case nil:
		case string:
			converted[i].Value = v
		case float64:
			converted[i].Value = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			converted[i].Value = strconv.FormatBool(v)
		default:
			encoded, err := json.Marshal(v)
			if err == nil {
				converted[i].Value = string(encoded)
			}
		}
	}
	return converted
}

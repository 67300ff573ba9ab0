package tmx

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
)

// The doc* types mirror the document grammar. TMX decodes straight into
// them; TMJ is converted into them (see tmj.go). The builder turns them into
// the public model.

type docMap struct {
	Version         string
	TiledVersion    string
	Orientation     string
	RenderOrder     string
	BackgroundColor string
	Infinite        bool

	Width, Height         int
	TileWidth, TileHeight int

	Properties []docProperty
	Tilesets   []docTileset
	Layers     []docLayer
}

type docProperty struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
	Text  string `xml:",chardata"`
}

type docProperties struct {
	Properties []docProperty `xml:"property"`
}

type docImage struct {
	Source string `xml:"source,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
}

type docTilesetTile struct {
	ID         int           `xml:"id,attr"`
	Image      *docImage     `xml:"image"`
	Properties []docProperty `xml:"properties>property"`
}

type docTileset struct {
	FirstGID   int    `xml:"firstgid,attr"`
	Source     string `xml:"source,attr"`
	Name       string `xml:"name,attr"`
	TileWidth  int    `xml:"tilewidth,attr"`
	TileHeight int    `xml:"tileheight,attr"`
	Spacing    int    `xml:"spacing,attr"`
	Margin     int    `xml:"margin,attr"`
	TileCount  int    `xml:"tilecount,attr"`
	Columns    int    `xml:"columns,attr"`

	Image      *docImage        `xml:"image"`
	Tiles      []docTilesetTile `xml:"tile"`
	Properties []docProperty    `xml:"properties>property"`
}

// docDataTile keeps the gid as text so a bad value fails only its layer.
type docDataTile struct {
	GID string `xml:"gid,attr"`
}

type docChunk struct {
	X       int           `xml:"x,attr"`
	Y       int           `xml:"y,attr"`
	Width   int           `xml:"width,attr"`
	Height  int           `xml:"height,attr"`
	Content string        `xml:",chardata"`
	Tiles   []docDataTile `xml:"tile"`

	raw json.RawMessage
}

type docData struct {
	Encoding    string        `xml:"encoding,attr"`
	Compression string        `xml:"compression,attr"`
	Content     string        `xml:",chardata"`
	Tiles       []docDataTile `xml:"tile"`
	Chunks      []docChunk    `xml:"chunk"`

	// raw is the undecoded TMJ data field: a GID array or an encoded string.
	raw json.RawMessage
}

type docPoints struct {
	Points string `xml:"points,attr"`
}

type docText struct {
	FontFamily string `xml:"fontfamily,attr"`
	PixelSize  *int   `xml:"pixelsize,attr"`
	Wrap       int    `xml:"wrap,attr"`
	Color      string `xml:"color,attr"`
	Bold       int    `xml:"bold,attr"`
	Italic     int    `xml:"italic,attr"`
	Underline  int    `xml:"underline,attr"`
	Strikeout  int    `xml:"strikeout,attr"`
	Kerning    *int   `xml:"kerning,attr"`
	HAlign     string `xml:"halign,attr"`
	VAlign     string `xml:"valign,attr"`
	Text       string `xml:",chardata"`
}

type docObject struct {
	ID       int     `xml:"id,attr"`
	Name     string  `xml:"name,attr"`
	Type     string  `xml:"type,attr"`
	Class    string  `xml:"class,attr"`
	X        float64 `xml:"x,attr"`
	Y        float64 `xml:"y,attr"`
	Width    float64 `xml:"width,attr"`
	Height   float64 `xml:"height,attr"`
	Rotation float64 `xml:"rotation,attr"`
	GID      uint32  `xml:"gid,attr"`
	Visible  *int    `xml:"visible,attr"`
	Template string  `xml:"template,attr"`

	Ellipse  *struct{}  `xml:"ellipse"`
	Point    *struct{}  `xml:"point"`
	Polygon  *docPoints `xml:"polygon"`
	Polyline *docPoints `xml:"polyline"`
	Text     *docText   `xml:"text"`

	Properties []docProperty `xml:"properties>property"`

	// Already parsed outlines of TMJ objects.
	polygon, polyline []Vector2
}

// Layer kinds, named after their TMX elements.
const (
	kindTileLayer   = "layer"
	kindObjectGroup = "objectgroup"
	kindImageLayer  = "imagelayer"
	kindGroup       = "group"
)

type docLayer struct {
	Kind string

	ID               int
	Name             string
	Width, Height    int
	Visible          bool
	Opacity          float64
	OffsetX, OffsetY float64

	Properties []docProperty
	Data       *docData
	Objects    []docObject
	Layers     []docLayer
}

// attrSet gives typed access to an element's attributes. Values that fail to
// parse fall back to the default.
type attrSet map[string]string

func attrsOf(start xml.StartElement) attrSet {
	a := make(attrSet, len(start.Attr))
	for _, attr := range start.Attr {
		a[attr.Name.Local] = attr.Value
	}
	return a
}

func (a attrSet) getString(name, def string) string {
	if v, ok := a[name]; ok {
		return v
	}
	return def
}

func (a attrSet) getInt(name string, def int) int {
	v, ok := a[name]
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func (a attrSet) getFloat(name string, def float64) float64 {
	v, ok := a[name]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func (a attrSet) getBool(name string, def bool) bool {
	v, ok := a[name]
	if !ok {
		return def
	}
	return v == "1" || v == "true"
}

func isLayerElement(name string) bool {
	switch name {
	case kindTileLayer, kindObjectGroup, kindImageLayer, kindGroup:
		return true
	}
	return false
}

// UnmarshalXML keeps tilesets and the mixed list of layer elements in
// document order, which plain struct tags cannot do.
func (m *docMap) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if start.Name.Local != "map" {
		return fmt.Errorf("%w: root element is <%s>, want <map>", ErrMalformed, start.Name.Local)
	}

	a := attrsOf(start)
	m.Version = a.getString("version", "")
	m.TiledVersion = a.getString("tiledversion", "")
	m.Orientation = a.getString("orientation", "orthogonal")
	m.RenderOrder = a.getString("renderorder", "right-down")
	m.BackgroundColor = a.getString("backgroundcolor", "")
	m.Infinite = a.getBool("infinite", false)
	m.Width = a.getInt("width", 0)
	m.Height = a.getInt("height", 0)
	m.TileWidth = a.getInt("tilewidth", 0)
	m.TileHeight = a.getInt("tileheight", 0)

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch name := t.Name.Local; {
			case name == "properties":
				var props docProperties
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				m.Properties = append(m.Properties, props.Properties...)
			case name == "tileset":
				var tileset docTileset
				if err := d.DecodeElement(&tileset, &t); err != nil {
					return err
				}
				m.Tilesets = append(m.Tilesets, tileset)
			case isLayerElement(name):
				var layer docLayer
				if err := d.DecodeElement(&layer, &t); err != nil {
					return err
				}
				m.Layers = append(m.Layers, layer)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (l *docLayer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	a := attrsOf(start)
	l.Kind = start.Name.Local
	l.ID = a.getInt("id", 0)
	l.Name = a.getString("name", "")
	l.Width = a.getInt("width", 0)
	l.Height = a.getInt("height", 0)
	l.Visible = a.getBool("visible", true)
	l.Opacity = a.getFloat("opacity", 1)
	l.OffsetX = a.getFloat("offsetx", 0)
	l.OffsetY = a.getFloat("offsety", 0)

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch name := t.Name.Local; {
			case name == "properties":
				var props docProperties
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				l.Properties = append(l.Properties, props.Properties...)
			case name == "data":
				l.Data = &docData{}
				if err := d.DecodeElement(l.Data, &t); err != nil {
					return err
				}
			case name == "object":
				var object docObject
				if err := d.DecodeElement(&object, &t); err != nil {
					return err
				}
				l.Objects = append(l.Objects, object)
			case isLayerElement(name):
				var child docLayer
				if err := d.DecodeElement(&child, &t); err != nil {
					return err
				}
				l.Layers = append(l.Layers, child)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

func decodeTMX(data []byte) (*docMap, error) {
	var m docMap
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func decodeTSX(data []byte) (*docTileset, error) {
	var tileset docTileset
	if err := xml.Unmarshal(data, &tileset); err != nil {
		return nil, err
	}
	return &tileset, nil
}

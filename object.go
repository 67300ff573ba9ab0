package tmx

import (
	"errors"
	"image/color"
	"strconv"

	opt "github.com/repeale/fp-go/option"
)

// ErrTemplatesUnsupported is reported by TemplateError for objects that
// reference an external template. Templates are recorded but never expanded.
var ErrTemplatesUnsupported = errors.New("object templates are not supported")

// ObjectKind discriminates the shape carried by an Object.
type ObjectKind int

const (
	KindNone ObjectKind = iota
	KindEllipse
	KindPoint
	KindPolygon
	KindPolyline
	KindText
)

var objectKindNames = map[ObjectKind]string{
	KindNone:     "none",
	KindEllipse:  "ellipse",
	KindPoint:    "point",
	KindPolygon:  "polygon",
	KindPolyline: "polyline",
	KindText:     "text",
}

func (k ObjectKind) String() string {
	if name, ok := objectKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Shape is the kind specific payload of an Object. It is one of
// *PointShape, *PolyShape or *TextShape.
type Shape interface {
	shape()
}

// PointShape is the payload of a point object.
type PointShape struct {
	Point Vector2
}

// PolyShape is the payload of polygon and polyline objects. Points are
// relative to the object's position; the object's Kind tells whether the
// outline is closed.
type PolyShape struct {
	Points []Vector2
}

// TextShape is the payload of a text object.
type TextShape struct {
	Text  string
	Color color.RGBA
	Wrap  bool

	FontSize   int
	FontFamily string
	Bold       bool
	Italic     bool
	Underline  bool
	Strikeout  bool
	Kerning    bool

	HAlign string // left, center, right or justify
	VAlign string // top, center or bottom
}

func (*PointShape) shape() {}
func (*PolyShape) shape()  {}
func (*TextShape) shape()  {}

// Object is an entity placed on an object layer.
type Object struct {
	ID   int
	Name string
	Type string

	Bounds   Rectangle
	Rotation float64 // Degrees, clockwise

	// Tile is the tile drawn by tile objects, EmptyTile otherwise.
	Tile    Tile
	Visible bool

	// Template is the path of the template this object was instantiated
	// from. It is never resolved.
	Template string

	Kind  ObjectKind
	Shape Shape

	Properties Properties
}

// IsTile reports whether the object draws a tile.
func (o *Object) IsTile() bool {
	return !o.Tile.IsEmpty()
}

// Point returns the position of a point object.
func (o *Object) Point() (Vector2, bool) {
	if p, ok := o.Shape.(*PointShape); ok && o.Kind == KindPoint {
		return p.Point, true
	}
	return Vector2{}, false
}

// Poly returns the outline of a polygon or polyline object.
func (o *Object) Poly() (*PolyShape, bool) {
	if p, ok := o.Shape.(*PolyShape); ok && (o.Kind == KindPolygon || o.Kind == KindPolyline) {
		return p, true
	}
	return nil, false
}

// Text returns the payload of a text object.
func (o *Object) Text() (*TextShape, bool) {
	if t, ok := o.Shape.(*TextShape); ok && o.Kind == KindText {
		return t, true
	}
	return nil, false
}

// Vertices returns the outline of a polygon or polyline object in layer
// coordinates. Rotation is not applied.
func (o *Object) Vertices() []Vector2 {
	poly, ok := o.Poly()
	if !ok {
		return nil
	}

	origin := Vector2{X: o.Bounds.X, Y: o.Bounds.Y}
	vertices := make([]Vector2, len(poly.Points))
	for i, p := range poly.Points {
		vertices[i] = origin.Add(p)
	}
	return vertices
}

// TemplateError returns ErrTemplatesUnsupported when the object depends on
// a template, nil otherwise.
func (o *Object) TemplateError() error {
	if o.Template == "" {
		return nil
	}
	return ErrTemplatesUnsupported
}

// GetProperty returns the first property named name, or nil.
func (o *Object) GetProperty(name string) *Property {
	return o.Properties.Get(name)
}

// Property type tags.
const (
	PropertyString = "string"
	PropertyInt    = "int"
	PropertyFloat  = "float"
	PropertyBool   = "bool"
	PropertyColor  = "color"
	PropertyFile   = "file"
	PropertyObject = "object"
	PropertyClass  = "class"
)

// Property is a named, typed value. The value is kept as text and converted
// on demand.
type Property struct {
	Name  string
	Type  string
	Value string
}

// Int returns the value of an int property, 0 otherwise.
func (p *Property) Int() int {
	if p.Type != PropertyInt || p.Value == "" {
		return 0
	}

	value, err := strconv.Atoi(p.Value)
	if err != nil {
		return 0
	}
	return value
}

// Float returns the value of a float property, 0 otherwise.
func (p *Property) Float() float64 {
	if p.Type != PropertyFloat || p.Value == "" {
		return 0
	}

	value, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		return 0
	}
	return value
}

// Bool returns the value of a bool property, false otherwise.
func (p *Property) Bool() bool {
	if p.Type != PropertyBool || p.Value == "" {
		return false
	}

	value, err := strconv.ParseBool(p.Value)
	if err != nil {
		return false
	}
	return value
}

// String returns the raw text of the property regardless of its type.
func (p *Property) String() string {
	return p.Value
}

// Properties keeps properties in declaration order. Names are not
// guaranteed to be unique.
type Properties []Property

// Get returns the first property named name, or nil.
func (ps Properties) Get(name string) *Property {
	for i := range ps {
		if ps[i].Name == name {
			return &ps[i]
		}
	}
	return nil
}

// Find is Get for callers working with options.
func (ps Properties) Find(name string) opt.Option[Property] {
	if p := ps.Get(name); p != nil {
		return opt.Some(*p)
	}
	return opt.None[Property]()
}

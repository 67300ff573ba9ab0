package tmx

import (
	"testing"

	opt "github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyAccessors(t *testing.T) {
	hp := Property{Name: "hp", Type: PropertyInt, Value: "7"}
	assert.Equal(t, 7, hp.Int())
	assert.Equal(t, 0.0, hp.Float())
	assert.False(t, hp.Bool())
	assert.Equal(t, "7", hp.String())

	speed := Property{Name: "speed", Type: PropertyFloat, Value: "1.5"}
	assert.Equal(t, 1.5, speed.Float())
	assert.Equal(t, 0, speed.Int())

	solid := Property{Name: "solid", Type: PropertyBool, Value: "true"}
	assert.True(t, solid.Bool())

	broken := Property{Name: "hp", Type: PropertyInt, Value: "lots"}
	assert.Equal(t, 0, broken.Int())

	empty := Property{Name: "hp", Type: PropertyInt}
	assert.Equal(t, 0, empty.Int())
}

func TestPropertiesGet(t *testing.T) {
	props := Properties{
		{Name: "hp", Type: PropertyInt, Value: "7"},
		{Name: "name", Type: PropertyString, Value: "player"},
		{Name: "hp", Type: PropertyInt, Value: "9"},
	}

	hp := props.Get("hp")
	require.NotNil(t, hp)
	assert.Equal(t, 7, hp.Int())

	assert.Nil(t, props.Get("missing"))
	assert.Nil(t, Properties(nil).Get("hp"))

	found := props.Find("name")
	require.True(t, opt.IsSome(found))
	assert.Equal(t, "player", found.Value.String())
	assert.True(t, opt.IsNone(props.Find("missing")))
}

func TestObjectGetProperty(t *testing.T) {
	object := &Object{
		Properties: Properties{{Name: "hp", Type: PropertyInt, Value: "7"}},
	}

	require.NotNil(t, object.GetProperty("hp"))
	assert.Equal(t, 7, object.GetProperty("hp").Int())
	assert.Nil(t, object.GetProperty("mana"))
}

func TestObjectShapes(t *testing.T) {
	point := &Object{Kind: KindPoint, Shape: &PointShape{Point: Vector2{X: 48, Y: 80}}}
	p, ok := point.Point()
	assert.True(t, ok)
	assert.Equal(t, Vector2{X: 48, Y: 80}, p)
	_, ok = point.Poly()
	assert.False(t, ok)
	_, ok = point.Text()
	assert.False(t, ok)

	polygon := &Object{
		Bounds: Rectangle{X: 10, Y: 20},
		Kind:   KindPolygon,
		Shape:  &PolyShape{Points: []Vector2{{0, 0}, {10, 0}, {10, 10}}},
	}
	poly, ok := polygon.Poly()
	require.True(t, ok)
	assert.Len(t, poly.Points, 3)
	assert.Equal(t, []Vector2{{10, 20}, {20, 20}, {20, 30}}, polygon.Vertices())

	// A payload that does not match the kind is not reported.
	mismatched := &Object{Kind: KindEllipse, Shape: &PolyShape{}}
	_, ok = mismatched.Poly()
	assert.False(t, ok)
	assert.Nil(t, mismatched.Vertices())

	text := &Object{Kind: KindText, Shape: &TextShape{Text: "hello"}}
	shape, ok := text.Text()
	require.True(t, ok)
	assert.Equal(t, "hello", shape.Text)
}

func TestObjectTile(t *testing.T) {
	assert.False(t, (&Object{Tile: EmptyTile()}).IsTile())
	assert.True(t, (&Object{Tile: Tile{ID: 3}}).IsTile())
}

func TestTemplateError(t *testing.T) {
	assert.NoError(t, (&Object{}).TemplateError())
	assert.ErrorIs(t, (&Object{Template: "crate.tx"}).TemplateError(), ErrTemplatesUnsupported)
}

func TestObjectKindString(t *testing.T) {
	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "polyline", KindPolyline.String())
	assert.Equal(t, "unknown", ObjectKind(42).String())
}

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/retroblast-engine/tmx"
)

// Output formats of the info command.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

type PropertySummary struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

type SheetSummary struct {
	ID         int               `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Source     string            `json:"source,omitempty" yaml:"source,omitempty"`
	StartFrame int               `json:"startFrame" yaml:"startFrame"`
	Frames     int               `json:"frames" yaml:"frames"`
	TileWidth  int               `json:"tileWidth" yaml:"tileWidth"`
	TileHeight int               `json:"tileHeight" yaml:"tileHeight"`
	Properties []PropertySummary `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type LayerSummary struct {
	ID         int               `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Width      int               `json:"width" yaml:"width"`
	Height     int               `json:"height" yaml:"height"`
	Visible    bool              `json:"visible" yaml:"visible"`
	Used       int               `json:"used" yaml:"used"` // Non-empty cells
	Properties []PropertySummary `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type ObjectSummary struct {
	ID         int               `json:"id" yaml:"id"`
	Name       string            `json:"name,omitempty" yaml:"name,omitempty"`
	Type       string            `json:"type,omitempty" yaml:"type,omitempty"`
	Kind       string            `json:"kind" yaml:"kind"`
	X          float64           `json:"x" yaml:"x"`
	Y          float64           `json:"y" yaml:"y"`
	GID        int               `json:"gid,omitempty" yaml:"gid,omitempty"`
	Template   string            `json:"template,omitempty" yaml:"template,omitempty"`
	Properties []PropertySummary `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type ObjectLayerSummary struct {
	ID      int             `json:"id" yaml:"id"`
	Name    string          `json:"name" yaml:"name"`
	Visible bool            `json:"visible" yaml:"visible"`
	Objects []ObjectSummary `json:"objects" yaml:"objects"`
}

// Summary is the printable digest of a map.
type Summary struct {
	Orientation  string               `json:"orientation" yaml:"orientation"`
	Width        int                  `json:"width" yaml:"width"`
	Height       int                  `json:"height" yaml:"height"`
	TileWidth    int                  `json:"tileWidth" yaml:"tileWidth"`
	TileHeight   int                  `json:"tileHeight" yaml:"tileHeight"`
	Properties   []PropertySummary    `json:"properties,omitempty" yaml:"properties,omitempty"`
	Sheets       []SheetSummary       `json:"sheets" yaml:"sheets"`
	Layers       []LayerSummary       `json:"layers" yaml:"layers"`
	ObjectLayers []ObjectLayerSummary `json:"objectLayers" yaml:"objectLayers"`
}

func summarizeProperties(props tmx.Properties) []PropertySummary {
	if len(props) == 0 {
		return nil
	}

	summary := make([]PropertySummary, len(props))
	for i, p := range props {
		summary[i] = PropertySummary{Name: p.Name, Type: p.Type, Value: p.Value}
	}
	return summary
}

// Summarize walks every sheet and layer of m in id order.
func Summarize(m *tmx.TileMap) Summary {
	summary := Summary{
		Orientation:  m.Orientation.String(),
		Width:        m.Width,
		Height:       m.Height,
		TileWidth:    m.TileWidth,
		TileHeight:   m.TileHeight,
		Properties:   summarizeProperties(m.Properties),
		Sheets:       []SheetSummary{},
		Layers:       []LayerSummary{},
		ObjectLayers: []ObjectLayerSummary{},
	}

	for _, id := range m.SheetIDs() {
		sheet := m.Sheets[id]
		summary.Sheets = append(summary.Sheets, SheetSummary{
			ID:         sheet.ID,
			Name:       sheet.Name,
			Source:     sheet.Source,
			StartFrame: sheet.StartFrame,
			Frames:     len(sheet.Tiles),
			TileWidth:  sheet.TileWidth,
			TileHeight: sheet.TileHeight,
			Properties: summarizeProperties(sheet.Properties),
		})
	}

	for _, id := range m.LayerIDs() {
		layer := m.Layers[id]

		used := 0
		for _, tile := range layer.Tiles {
			if !tile.IsEmpty() {
				used++
			}
		}

		summary.Layers = append(summary.Layers, LayerSummary{
			ID:         layer.ID,
			Name:       layer.Name,
			Width:      layer.Width,
			Height:     layer.Height,
			Visible:    layer.Visible,
			Used:       used,
			Properties: summarizeProperties(layer.Properties),
		})
	}

	for _, id := range m.ObjectLayerIDs() {
		layer := m.Objects[id]

		objects := make([]ObjectSummary, 0, len(layer.Objects))
		for _, object := range layer.Objects {
			gid := 0
			if object.IsTile() {
				gid = object.Tile.ID
			}

			objects = append(objects, ObjectSummary{
				ID:         object.ID,
				Name:       object.Name,
				Type:       object.Type,
				Kind:       object.Kind.String(),
				X:          object.Bounds.X,
				Y:          object.Bounds.Y,
				GID:        gid,
				Template:   object.Template,
				Properties: summarizeProperties(object.Properties),
			})
		}

		summary.ObjectLayers = append(summary.ObjectLayers, ObjectLayerSummary{
			ID:      layer.ID,
			Name:    layer.Name,
			Visible: layer.Visible,
			Objects: objects,
		})
	}

	return summary
}

// Encode serializes a summary in the given format.
func Encode(summary Summary, format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(summary)
	case FormatJSON:
		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case FormatCBOR:
		return cbor.Marshal(summary)
	}

	return nil, fmt.Errorf("unknown format %q", format)
}

// FormatGrid prints the tile ids of a grid layer, one row per line. Flipped
// tiles carry X, Y and D suffixes; empty cells print as dots.
func FormatGrid(m *tmx.TileMap, layerID int) (string, error) {
	if layerID == 0 {
		ids := m.LayerIDs()
		if len(ids) == 0 {
			return "", fmt.Errorf("map has no grid layers")
		}
		layerID = ids[0]
	}

	layer, ok := m.Layers[layerID]
	if !ok {
		return "", fmt.Errorf("no grid layer with id %d", layerID)
	}

	var out strings.Builder
	for y := 0; y < layer.Height; y++ {
		var row strings.Builder
		for x := 0; x < layer.Width; x++ {
			tile := m.GetTile(x, y, layerID)

			cell := "."
			if !tile.IsEmpty() {
				cell = fmt.Sprintf("%02d", tile.ID)
				if tile.XFlip {
					cell += "X"
				}
				if tile.YFlip {
					cell += "Y"
				}
				if tile.DiagonalFlip {
					cell += "D"
				}
			}

			row.WriteString(fmt.Sprintf("%-5s", cell))
		}
		out.WriteString(strings.TrimRight(row.String(), " "))
		out.WriteString("\n")
	}

	return out.String(), nil
}

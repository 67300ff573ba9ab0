package main

import (
	"encoding/json"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/retroblast-engine/tmx"
)

const level = `<map orientation="orthogonal" width="3" height="2" tilewidth="16" tileheight="16">
 <properties><property name="title" value="level"/></properties>
 <tileset firstgid="1" name="terrain" tilewidth="16" tileheight="16" tilecount="16" columns="4">
  <image source="terrain.png" width="64" height="64"/>
 </tileset>
 <layer id="2" name="ground" width="3" height="2">
  <data encoding="csv">1,0,12,2147483649,1073741826,536870915</data>
 </layer>
 <layer id="5" name="decor" width="3" height="2">
  <data encoding="csv">0,0,0,0,0,4</data>
 </layer>
 <objectgroup id="3" name="spawns">
  <object id="1" name="player" type="spawn" x="8" y="24"><point/></object>
  <object id="2" gid="3" x="16" y="32" width="16" height="16" template="crate.tx">
   <properties><property name="hp" type="int" value="7"/></properties>
  </object>
 </objectgroup>
</map>`

func readLevel(t *testing.T) *tmx.TileMap {
	t.Helper()
	m, err := tmx.ReadTileMapFromMemory([]byte(level), tmx.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return m
}

func TestSummarize(t *testing.T) {
	summary := Summarize(readLevel(t))

	assert.Equal(t, "orthogonal", summary.Orientation)
	assert.Equal(t, 3, summary.Width)
	assert.Equal(t, []PropertySummary{{Name: "title", Type: "string", Value: "level"}}, summary.Properties)

	require.Len(t, summary.Sheets, 1)
	assert.Equal(t, SheetSummary{
		ID:         1,
		Name:       "terrain",
		Source:     "terrain.png",
		StartFrame: 1,
		Frames:     16,
		TileWidth:  16,
		TileHeight: 16,
	}, summary.Sheets[0])

	require.Len(t, summary.Layers, 2)
	assert.Equal(t, 2, summary.Layers[0].ID)
	assert.Equal(t, 5, summary.Layers[0].Used)
	assert.Equal(t, 5, summary.Layers[1].ID)
	assert.Equal(t, 1, summary.Layers[1].Used)

	require.Len(t, summary.ObjectLayers, 1)
	objects := summary.ObjectLayers[0].Objects
	require.Len(t, objects, 2)
	assert.Equal(t, ObjectSummary{ID: 1, Name: "player", Type: "spawn", Kind: "point", X: 8, Y: 24}, objects[0])
	assert.Equal(t, 3, objects[1].GID)
	assert.Equal(t, "crate.tx", objects[1].Template)
	assert.Equal(t, []PropertySummary{{Name: "hp", Type: "int", Value: "7"}}, objects[1].Properties)
}

func TestEncode(t *testing.T) {
	summary := Summarize(readLevel(t))

	out, err := Encode(summary, FormatYAML)
	require.NoError(t, err)
	var fromYAML Summary
	require.NoError(t, yaml.Unmarshal(out, &fromYAML))
	assert.Equal(t, summary, fromYAML)

	out, err = Encode(summary, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), out[len(out)-1])
	var fromJSON Summary
	require.NoError(t, json.Unmarshal(out, &fromJSON))
	assert.Equal(t, summary, fromJSON)

	out, err = Encode(summary, FormatCBOR)
	require.NoError(t, err)
	var fromCBOR Summary
	require.NoError(t, cbor.Unmarshal(out, &fromCBOR))
	assert.Equal(t, summary.Layers, fromCBOR.Layers)

	_, err = Encode(summary, "xml")
	assert.Error(t, err)
}

func TestFormatGrid(t *testing.T) {
	m := readLevel(t)

	grid, err := FormatGrid(m, 0)
	require.NoError(t, err)
	assert.Equal(t, "01   .    12\n01X  02Y  03D\n", grid)

	grid, err = FormatGrid(m, 5)
	require.NoError(t, err)
	assert.Equal(t, ".    .    .\n.    .    04\n", grid)

	_, err = FormatGrid(m, 3)
	assert.Error(t, err)

	_, err = FormatGrid(tmx.NewTileMap(), 0)
	assert.Error(t, err)
}

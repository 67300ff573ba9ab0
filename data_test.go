package tmx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSV(t *testing.T) {
	gids, err := decodeCSV("\n 1, 2,\n3,4294967295,\n")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 0xffffffff}, gids)

	_, err = decodeCSV("1,-2")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = decodeCSV("4294967296")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeTileData(t *testing.T) {
	_, err := decodeTileData(EncodingCSV, CompressionGzip, "1,2")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = decodeTileData(EncodingBase64, "lzma", "AQAAAA==")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = decodeTileData(EncodingBase64, CompressionZstd, "")
	assert.ErrorIs(t, err, ErrMalformed)

	gids, err := decodeTileData(EncodingBase64, CompressionNone, " AQAAAAIAAIA= ")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 0x80000002}, gids)
}

func TestTilesFromGIDs(t *testing.T) {
	assert.Equal(t,
		[]Tile{EmptyTile(), {ID: 9, DiagonalFlip: true}},
		tilesFromGIDs([]uint32{0, 0x20000009}),
	)
}

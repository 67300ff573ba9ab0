package tmx

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Tile data encodings and compressions understood by the reader.
const (
	EncodingXML    = ""
	EncodingCSV    = "csv"
	EncodingBase64 = "base64"

	CompressionNone = ""
	CompressionZlib = "zlib"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
)

// decodeTileData turns an encoded tile stream into raw GIDs.
func decodeTileData(encoding, compression, payload string) ([]uint32, error) {
	switch encoding {
	case EncodingCSV:
		if compression != CompressionNone {
			return nil, fmt.Errorf("%w: csv data cannot be compressed", ErrMalformed)
		}
		return decodeCSV(payload)
	case EncodingBase64:
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 tile data: %v", ErrMalformed, err)
		}

		raw, err = decompress(compression, raw)
		if err != nil {
			return nil, err
		}

		return unpackGIDs(raw)
	}

	return nil, fmt.Errorf("%w: unknown tile data encoding %q", ErrMalformed, encoding)
}

func decodeCSV(payload string) ([]uint32, error) {
	fields := strings.Split(payload, ",")
	gids := make([]uint32, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		gid, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid csv tile %q", ErrMalformed, field)
		}
		gids = append(gids, uint32(gid))
	}

	return gids, nil
}

// unpackGIDs reads little-endian 32-bit GIDs, row by row, from top to bottom.
func unpackGIDs(raw []byte) ([]uint32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: tile data length %d is not a multiple of 4", ErrMalformed, len(raw))
	}

	gids := make([]uint32, len(raw)/4)
	for i := range gids {
		gids[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return gids, nil
}

func decompress(compression string, data []byte) ([]byte, error) {
	if compression == CompressionNone {
		return data, nil
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s tile data is empty", ErrMalformed, compression)
	}

	var (
		r   io.ReadCloser
		err error
	)

	switch compression {
	case CompressionZlib:
		r, err = zlib.NewReader(bytes.NewReader(data))
	case CompressionGzip:
		r, err = gzip.NewReader(bytes.NewReader(data))
	case CompressionZstd:
		return decompressZstd(data)
	default:
		return nil, fmt.Errorf("%w: unknown compression %q", ErrMalformed, compression)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create %s reader: %v", ErrMalformed, compression, err)
	}
	defer r.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		return nil, fmt.Errorf("%w: failed to decompress %s data: %v", ErrMalformed, compression, err)
	}

	return out.Bytes(), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer decoder.Close()

	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress zstd data: %v", ErrMalformed, err)
	}
	return out, nil
}

// tilesFromGIDs strips the flip bits off every GID.
func tilesFromGIDs(gids []uint32) []Tile {
	tiles := make([]Tile, len(gids))
	for i, gid := range gids {
		tiles[i] = DecodeGID(gid)
	}
	return tiles
}

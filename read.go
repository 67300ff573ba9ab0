package tmx

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrMalformed reports a document that could not be decoded.
	ErrMalformed = errors.New("malformed map document")
	// ErrInvalidGeometry reports a map without a usable size or cell size.
	ErrInvalidGeometry = errors.New("map has no valid geometry")
	// ErrUnknownFormat reports data that is neither TMX nor TMJ.
	ErrUnknownFormat = errors.New("unknown map format")
)

// Format identifies the serialization of a map or tileset document.
type Format int

const (
	FormatUnknown Format = iota
	FormatXML            // TMX maps, TSX tilesets
	FormatJSON           // TMJ maps, TSJ tilesets
)

// Sniff guesses the document format from its first significant byte.
func Sniff(data []byte) Format {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return FormatUnknown
	}

	switch data[0] {
	case '<':
		return FormatXML
	case '{':
		return FormatJSON
	}
	return FormatUnknown
}

type config struct {
	root   Root
	logger zerolog.Logger
	strict bool
}

func newConfig(opts []Option) *config {
	c := &config{
		root:   noRoot{},
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures how a map is read.
type Option func(*config)

// WithRoot sets where external files referenced by the document are read
// from. ReadTileMap defaults to the directory of the map file.
func WithRoot(root Root) Option {
	return func(c *config) {
		if root != nil {
			c.root = root
		}
	}
}

// WithLogger sets the logger that reports skipped elements.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithStrict turns the elements the reader would normally skip (unknown
// layer kinds, bad tile data, unresolvable tilesets) into errors.
func WithStrict(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}

// ReadTileMap loads the map stored at filename. External tilesets are
// resolved relative to the file unless WithRoot says otherwise.
func ReadTileMap(filename string, opts ...Option) (*TileMap, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	opts = append([]Option{WithRoot(fsRootFor(filename))}, opts...)
	m, err := ReadTileMapFromMemory(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// ReadTileMapFromMemory decodes a TMX or TMJ document held in data. On
// error the returned map is nil.
func ReadTileMapFromMemory(data []byte, opts ...Option) (*TileMap, error) {
	c := newConfig(opts)

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}

	b := &builder{config: c}
	return b.build(doc)
}

func decodeDocument(data []byte) (*docMap, error) {
	var (
		doc *docMap
		err error
	)

	switch Sniff(data) {
	case FormatXML:
		doc, err = decodeTMX(data)
	case FormatJSON:
		doc, err = decodeTMJ(data)
	default:
		return nil, ErrUnknownFormat
	}

	if err != nil {
		if errors.Is(err, ErrMalformed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return doc, nil
}

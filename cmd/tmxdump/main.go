package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/retroblast-engine/tmx"
)

var CLI struct {
	Debug  bool   `help:"Whether to enable debug logging."`
	Strict bool   `help:"Fail on elements that would otherwise be skipped."`
	Config string `help:"YAML file with default settings." type:"existingfile"`

	Info struct {
		Map    string `arg:"" name:"map" help:"Map file to inspect." type:"existingfile"`
		Format string `help:"Output format (yaml, json or cbor). Overrides the settings file."`
	} `cmd:"" help:"Print a summary of a map's sheets, layers and objects."`

	Grid struct {
		Map   string `arg:"" name:"map" help:"Map file to inspect." type:"existingfile"`
		Layer int    `help:"Id of the grid layer to print. Defaults to the lowest id." default:"0"`
	} `cmd:"" help:"Print the tile ids of a grid layer."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("tmxdump"),
		kong.Description("inspect Tiled maps"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("debug logging enabled")
	}

	settings, err := LoadSettings(CLI.Config)
	if err != nil {
		writeError(err)
	}
	settings.Strict = settings.Strict || CLI.Strict

	switch ctx.Command() {
	case "info <map>":
		if CLI.Info.Format != "" {
			settings.Format = CLI.Info.Format
		}

		m, err := readMap(CLI.Info.Map, settings)
		if err != nil {
			writeError(err)
		}

		out, err := Encode(Summarize(m), settings.Format)
		if err != nil {
			writeError(err)
		}
		os.Stdout.Write(out)
	case "grid <map>":
		m, err := readMap(CLI.Grid.Map, settings)
		if err != nil {
			writeError(err)
		}

		grid, err := FormatGrid(m, CLI.Grid.Layer)
		if err != nil {
			writeError(err)
		}
		fmt.Print(grid)
	}
}

func readMap(path string, settings Settings) (*tmx.TileMap, error) {
	opts := []tmx.Option{
		tmx.WithStrict(settings.Strict),
		tmx.WithLogger(log.Logger),
	}
	if settings.Root != "" {
		opts = append(opts, tmx.WithRoot(tmx.FSRoot(settings.Root)))
	}

	return tmx.ReadTileMap(path, opts...)
}

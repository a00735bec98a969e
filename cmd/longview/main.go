package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/agiangrant/longview"
	"github.com/agiangrant/longview/cmd/longview/commands"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if os.Getenv("LONGVIEW_DEBUG") != "" {
		longview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "probe":
		err = commands.Probe(args)
	case "render":
		err = commands.Render(args)
	case "fling":
		err = commands.Fling(args)
	case "config":
		err = commands.Config(args)
	case "version", "-v", "--version":
		fmt.Printf("longview version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`longview - windowed viewer for very tall images

Usage: longview <command> [options]

Commands:
  probe     Print image format, size and window geometry
  render    Render one viewport of an image to PNG
  fling     Simulate a drag and fling and write every frame as PNG
  config    Write or show longview.toml
  version   Print version information
  help      Show this help message

Examples:
  longview probe -width 1080 -height 1920 comic.png
  longview render -top 4000 -out frame.png comic.png
  longview fling -vy -6000 -out frames comic.png
  longview config init

Configuration:
  Gesture, fling and render settings are read from longview.toml in the
  working directory, or from the file given with -config.
  Set LONGVIEW_DEBUG=1 to log to stderr.`)
}

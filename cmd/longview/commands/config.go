package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/agiangrant/longview"
)

// Config implements the 'longview config' command
func Config(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	path := fs.String("config", "", "Path to longview.toml")
	force := fs.Bool("force", false, "Overwrite an existing file")
	fs.Parse(args)

	action := "show"
	if fs.NArg() > 0 {
		action = fs.Arg(0)
	}

	switch action {
	case "init":
		target := *path
		if target == "" {
			target = longview.ConfigFile
		}
		if _, err := os.Stat(target); err == nil && !*force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", target)
		}
		if err := longview.SaveConfig(target, longview.DefaultConfig()); err != nil {
			return err
		}
		fmt.Printf("  ✓ Created %s\n", target)
		return nil

	case "show":
		cfg, err := longview.LoadConfig(*path)
		if err != nil {
			return err
		}
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil

	default:
		return fmt.Errorf("unknown config action %q (want init or show)", action)
	}
}

// viewFlags are shared by the commands that lay out a view.
type viewFlags struct {
	config *string
	width  *int
	height *int
}

func addViewFlags(fs *flag.FlagSet) viewFlags {
	return viewFlags{
		config: fs.String("config", "", "Path to longview.toml"),
		width:  fs.Int("width", 1080, "Viewport width in pixels"),
		height: fs.Int("height", 1920, "Viewport height in pixels"),
	}
}

func (f viewFlags) load() (longview.Config, error) {
	return longview.LoadConfig(*f.config)
}

func (f viewFlags) viewport() longview.ViewportSize {
	return longview.ViewportSize{Width: *f.width, Height: *f.height}
}

// openImage opens the image named by the first positional argument.
func openImage(fs *flag.FlagSet, cfg longview.Config) (*longview.View, error) {
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("expected one image path, got %d arguments", fs.NArg())
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return nil, err
	}
	// Open closes f.
	return longview.Open(f, cfg)
}

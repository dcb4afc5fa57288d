package viewer

import (
	"flag"
	"fmt"
	"os"

	"github.com/physlab/physview.go/pkg/assets"
	"github.com/physlab/physview.go/pkg/control"
	"github.com/physlab/physview.go/pkg/sim/engine"
	"github.com/physlab/physview.go/pkg/sim/engine/basic"
)

// Config provides common options to set up a viewer.
type Config struct {
	// CatalogPath is the YAML catalog of robots and environments.
	CatalogPath string
	// ControlsPath is the YAML keyboard binding configuration.
	ControlsPath string
	// AssetsDir resolves asset locations on the local filesystem. When
	// empty, locations are fetched over HTTP.
	AssetsDir string
}

var defaultConfig = Config{}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.CatalogPath, "catalog", defaultConfig.CatalogPath, "Path to the robot/environment catalog (YAML)")
	flag.StringVar(&defaultConfig.ControlsPath, "controls", defaultConfig.ControlsPath, "Path to the keyboard binding configuration (YAML)")
	flag.StringVar(&defaultConfig.AssetsDir, "assets-dir", defaultConfig.AssetsDir, "Resolve asset locations under this directory instead of over HTTP")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewViewer creates a fully wired viewer from the config, reading keys
// from bus.
func (c *Config) NewViewer(bus *control.Bus) (*Viewer, error) {
	fsys, err := engine.NewFileSystem()
	if err != nil {
		return nil, err
	}
	eng := basic.New()

	var fetcher assets.Fetcher
	if c.AssetsDir != "" {
		fetcher = &assets.DirFetcher{Root: c.AssetsDir}
	} else {
		fetcher = assets.NewHTTPFetcher()
	}
	reg := assets.NewRegistry(fsys, fetcher)

	cat := &assets.Catalog{}
	if c.CatalogPath != "" {
		data, err := os.ReadFile(c.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		if cat, err = assets.LoadCatalog(data); err != nil {
			return nil, err
		}
	}

	controlsConf := &control.Config{}
	if c.ControlsPath != "" {
		data, err := os.ReadFile(c.ControlsPath)
		if err != nil {
			return nil, fmt.Errorf("read controls: %w", err)
		}
		if controlsConf, err = control.LoadConfig(data); err != nil {
			return nil, err
		}
	}

	return New(fsys, eng, eng, reg, cat, control.NewMap(bus, controlsConf)), nil
}

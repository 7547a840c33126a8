// blockcodec is a CLI which decodes, derives and stores block objects.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tanglekit/blockcodec/pkg/block"
	"github.com/tanglekit/blockcodec/pkg/config"
	"github.com/tanglekit/blockcodec/pkg/log"
)

type environment struct {
	config  *config.Config
	logger  log.Logger
	decoder *block.Decoder
}

func loadEnvironment(c *cli.Context) (*environment, error) {
	cfg := &config.Config{}
	if configPath := c.String("config"); configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.Merge(&config.Config{
		System: &config.SystemConfig{
			DataPath: c.String("data-path"),
			LogLevel: c.String("log-level"),
		},
		Storage: &config.StorageConfig{InMemory: c.Bool("in-memory")},
		Network: &config.NetworkConfig{HRP: c.String("hrp")},
	})
	if err := cfg.InsertDefault(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := log.NewLogger(cfg.System.LogLevel)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Codec.DecoderOptions()
	if err != nil {
		return nil, err
	}
	return &environment{
		config:  cfg,
		logger:  logger,
		decoder: block.NewDecoder(opts...),
	}, nil
}

// rootReader returns the reader of the top level app. Subcommand apps do not inherit it.
func rootReader(c *cli.Context) io.Reader {
	lineage := c.Lineage()
	for i := len(lineage) - 1; i >= 0; i-- {
		if app := lineage[i].App; app != nil && app.Reader != nil {
			return app.Reader
		}
	}
	return os.Stdin
}

// readInput reads the file named by the first argument, or the app reader if there is none or it is "-".
func readInput(c *cli.Context) ([]byte, error) {
	name := c.Args().First()
	if name == "" || name == "-" {
		return io.ReadAll(rootReader(c))
	}
	return os.ReadFile(name)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "blockcodec",
		Usage: "Decode, derive and store block objects",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (JSON, or YAML by extension)",
			},
			&cli.StringFlag{
				Name:  "data-path",
				Usage: "Directory of the output store",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "One of trace, debug, info, warn, error or fatal",
			},
			&cli.StringFlag{
				Name:  "hrp",
				Usage: "Human readable part of bech32 addresses",
			},
			&cli.BoolFlag{
				Name:  "in-memory",
				Usage: "Keep the output store in memory",
			},
		},
		Commands: []*cli.Command{
			decodeCommand(),
			addressCommand(),
			storeCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fail running application with %s\n", err)
		os.Exit(1)
	}
}

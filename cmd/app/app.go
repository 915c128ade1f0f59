package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/rolodex/internal"
	"github.com/starford/rolodex/internal/book"
	pkgconfig "github.com/starford/rolodex/pkg/config"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:   "rolodex",
		Usage:  "Personal contact book stored as a single JSON file",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "book",
				Aliases: []string{"b"},
				Usage:   "Path to the contacts file, overrides book.path",
				Sources: cli.EnvVars("ROLODEX_BOOK"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with live events",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the contact tools over MCP stdio",
				Action: serveMCP,
			},
			addCommand(),
			listCommand(),
			searchCommand(),
			showCommand(),
			editCommand(),
			deleteCommand(),
			statsCommand(),
			exportCommand(),
			importCommand(),
		},
	}
}

// loadConfig reads the config file and applies --book.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	// A path given by flag or env must exist; the default one may not.
	var err error
	if cmd.IsSet("config") {
		err = pkgconfig.Load(cmd.String("config"), cfg)
	} else {
		_, err = pkgconfig.LoadOptional(cmd.String("config"), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// The flag wins over the file.
	if p := cmd.String("book"); p != "" {
		cfg.Book.Path = p
	}
	return cfg, nil
}

// openBook loads the book for a one-shot console command. Logs go to
// stderr so they never mix with command output.
func openBook(cmd *cli.Command) (*book.Book, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(os.Stderr, max(cfg.App.LogLevel, slog.LevelWarn))
	return internal.OpenBook(cfg, logger)
}

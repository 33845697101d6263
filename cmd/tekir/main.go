// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/tekir"
	"github.com/poiesic/tekir/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tekir",
		Usage: "Search, answers and AI chat from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML config file (default ~/.config/tekir/config.toml)",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides storage.path)",
			},
			&cli.BoolFlag{
				Name:  "in-memory",
				Usage: "Keep chats and preferences in memory for this run only",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a query against every source, or follow a bang",
				ArgsUsage: "<query>",
				Action:    searchCommand,
			},
			{
				Name:      "suggest",
				Usage:     "Show autocomplete suggestions",
				ArgsUsage: "<partial query>",
				Action:    suggestCommand,
			},
			{
				Name:      "ask",
				Usage:     "Get a single AI answer",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "model",
						Aliases: []string{"m"},
						Usage:   "Model id (defaults to the aiModel preference)",
					},
				},
			},
			{
				Name:      "redirect",
				Usage:     "Print where a bang query would redirect without following it",
				ArgsUsage: "<query>",
				Action:    redirectCommand,
			},
			{
				Name:   "bangs",
				Usage:  "List the known bangs",
				Action: bangsCommand,
			},
			{
				Name:   "models",
				Usage:  "List the selectable AI models",
				Action: modelsCommand,
			},
			chatCommand(),
			prefsCommand(),
		},
	}
}

// openEngine builds an Engine from the config file and global flags.
func openEngine(c *cli.Context, opts ...tekir.EngineOption) (*tekir.Engine, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	path := cfg.Storage.Path
	if db := c.String("db"); db != "" {
		path = db
	}

	engineOpts := tekir.OptionsFromConfig(cfg)
	if c.Bool("in-memory") {
		engineOpts = append(engineOpts, tekir.WithInMemoryStorage())
	}
	engineOpts = append(engineOpts, opts...)

	engine, err := tekir.NewEngine(c.Context, path, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

// withEngine opens an Engine, runs fn and closes the Engine.
func withEngine(fn func(ctx context.Context, c *cli.Context, engine *tekir.Engine) error, opts ...tekir.EngineOption) cli.ActionFunc {
	return func(c *cli.Context) error {
		engine, err := openEngine(c, opts...)
		if err != nil {
			return err
		}
		defer engine.Close()
		return fn(c.Context, c, engine)
	}
}

// argsText joins the positional arguments into one query.
func argsText(c *cli.Context, what string) (string, error) {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return "", fmt.Errorf("%s is required", what)
	}
	return text, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

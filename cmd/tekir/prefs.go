package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/poiesic/tekir"
	"github.com/poiesic/tekir/prefs"
	"github.com/urfave/cli/v2"
)

func prefsCommand() *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Read and change preferences",
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Print every preference",
				Action: withEngine(prefsGet),
			},
			{
				Name:      "set",
				Usage:     "Change a preference",
				ArgsUsage: "<key> <value>",
				Action:    withEngine(prefsSet),
			},
		},
	}
}

func prefsGet(ctx context.Context, c *cli.Context, engine *tekir.Engine) error {
	snap, err := engine.Preferences().Snapshot(ctx)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "%s = %t\n", prefs.KeyAIEnabled, snap.AIEnabled)
	fmt.Fprintf(w, "%s = %s\n", prefs.KeySearchEngine, snap.SearchEngine)
	fmt.Fprintf(w, "%s = %s\n", prefs.KeyAutocompleteSource, snap.AutocompleteSource)
	fmt.Fprintf(w, "%s = %s\n", prefs.KeyAIModel, snap.AIModel)
	return nil
}

func prefsSet(ctx context.Context, c *cli.Context, engine *tekir.Engine) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: prefs set <key> <value>")
	}
	key, value := c.Args().Get(0), c.Args().Get(1)
	store := engine.Preferences()

	switch key {
	case prefs.KeyAIEnabled:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", prefs.ErrInvalidValue, key)
		}
		return store.SetAIEnabled(ctx, enabled)
	case prefs.KeySearchEngine:
		return store.SetSearchEngine(ctx, value)
	case prefs.KeyAutocompleteSource:
		return store.SetAutocompleteSource(ctx, value)
	case prefs.KeyAIModel:
		return store.SetAIModel(ctx, value)
	default:
		return fmt.Errorf("unknown preference %q", key)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/tekir"
	"github.com/poiesic/tekir/bang"
	"github.com/poiesic/tekir/config"
	"github.com/poiesic/tekir/core"
	"github.com/poiesic/tekir/search"
	"github.com/urfave/cli/v2"
)

func searchCommand(c *cli.Context) error {
	query, err := argsText(c, "query")
	if err != nil {
		return err
	}
	w := c.App.Writer

	navigate := func(_ context.Context, target string) error {
		fmt.Fprintln(w, headerStyle.Render("Redirect")+" "+urlStyle.Render(target))
		return nil
	}

	return withEngine(func(ctx context.Context, c *cli.Context, engine *tekir.Engine) error {
		sub, err := engine.Search().Submit(ctx, query, nil)
		if err != nil {
			return err
		}
		if sub.Redirected() {
			return nil
		}
		if err := sub.Wait(ctx); err != nil {
			return err
		}

		if err := sub.Err(search.SourceSearch); err != nil {
			printError(w, string(search.SourceSearch), err)
		} else {
			printResults(w, sub.Results())
		}
		if err := sub.Err(search.SourceEncyclopedia); err != nil {
			printError(w, string(search.SourceEncyclopedia), err)
		} else {
			printSummary(w, sub.Summary())
		}
		if err := sub.Err(search.SourceAI); err != nil {
			printError(w, string(search.SourceAI), err)
		} else {
			printAnswer(w, sub.Options().Model, sub.Answer())
		}
		return nil
	}, tekir.WithNavigator(search.NavigatorFunc(navigate)))(c)
}

func suggestCommand(c *cli.Context) error {
	partial, err := argsText(c, "partial query")
	if err != nil {
		return err
	}
	return withEngine(func(ctx context.Context, c *cli.Context, engine *tekir.Engine) error {
		suggestions, err := engine.Search().Suggest(ctx, partial)
		if err != nil {
			return err
		}
		for _, s := range suggestions {
			fmt.Fprintln(c.App.Writer, s.Query)
		}
		return nil
	})(c)
}

func askCommand(c *cli.Context) error {
	question, err := argsText(c, "question")
	if err != nil {
		return err
	}
	return withEngine(func(ctx context.Context, c *cli.Context, engine *tekir.Engine) error {
		model := c.String("model")
		if model == "" {
			if model, err = engine.Preferences().AIModel(ctx); err != nil {
				return err
			}
		} else if _, ok := core.LookupModel(model); !ok {
			return fmt.Errorf("%w: %q", core.ErrUnknownModel, model)
		}

		answer, err := engine.Answerer().Answer(ctx, question, model)
		if err != nil {
			return err
		}
		printAnswer(c.App.Writer, model, answer)
		return nil
	})(c)
}

func loadResolver(c *cli.Context) (*bang.Resolver, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	return bang.NewResolver(cfg.ResolverOptions()...), nil
}

func redirectCommand(c *cli.Context) error {
	query, err := argsText(c, "query")
	if err != nil {
		return err
	}
	resolver, err := loadResolver(c)
	if err != nil {
		return err
	}
	target, err := resolver.Target(query)
	if errors.Is(err, core.ErrRedirectNotApplicable) {
		fmt.Fprintln(c.App.Writer, dimStyle.Render("no bang; the query would be searched"))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, target)
	return nil
}

func bangsCommand(c *cli.Context) error {
	resolver, err := loadResolver(c)
	if err != nil {
		return err
	}
	for _, b := range resolver.Bangs() {
		fmt.Fprintf(c.App.Writer, "%s %s %s\n",
			titleStyle.Render(fmt.Sprintf("!%-5s", b.Token)),
			b.Name,
			dimStyle.Render(b.Template))
	}
	return nil
}

func modelsCommand(c *cli.Context) error {
	for _, m := range core.Models() {
		marker := "  "
		if m.IsDefault() {
			marker = activeStyle.Render("* ")
		}
		fmt.Fprintf(c.App.Writer, "%s%s %s %s\n", marker, titleStyle.Render(m.ID), m.Name, dimStyle.Render(m.Description))
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/tekir"
	"github.com/poiesic/tekir/chat"
	"github.com/poiesic/tekir/core"
	"github.com/urfave/cli/v2"
)

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Manage chat sessions",
		Subcommands: []*cli.Command{
			{
				Name:   "new",
				Usage:  "Start a new session and make it active",
				Action: withEngine(chatNew),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "model",
						Aliases: []string{"m"},
						Usage:   "Model id (defaults to the aiModel preference)",
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List sessions, most recent first",
				Action: withEngine(chatList),
			},
			{
				Name:      "show",
				Usage:     "Print a session's messages",
				ArgsUsage: "[id]",
				Action:    withEngine(chatShow),
			},
			{
				Name:      "select",
				Usage:     "Make a session active",
				ArgsUsage: "<id>",
				Action:    withEngine(chatSelect),
			},
			{
				Name:      "rename",
				Usage:     "Set a session title; an empty title restores the default",
				ArgsUsage: "<id> [title]",
				Action:    withEngine(chatRename),
			},
			{
				Name:      "delete",
				Usage:     "Delete a session",
				ArgsUsage: "<id>",
				Action:    withEngine(chatDelete),
			},
			{
				Name:      "model",
				Usage:     "Change the model of a session that has no messages yet",
				ArgsUsage: "<id> <model>",
				Action:    withEngine(chatModel),
			},
			{
				Name:      "send",
				Usage:     "Send a message to the active session, creating one if needed",
				ArgsUsage: "<message>",
				Action:    withEngine(chatSend),
			},
			{
				Name:   "export",
				Usage:  "Write every session to stdout",
				Action: withEngine(chatExport),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (json, yaml)",
						Value:   chat.FormatJSON,
					},
				},
			},
		},
	}
}

func parseID(c *cli.Context, index int) (core.ID, error) {
	arg := c.Args().Get(index)
	if arg == "" {
		return 0, fmt.Errorf("session id is required")
	}
	n, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid session id %q: %w", arg, err)
	}
	return core.ID(n), nil
}

func chatNew(ctx context.Context, c *cli.Context, engine *tekir.Engine) error {
	model, err := engine.Preferences().Model(ctx)
	if err != nil {
		return err
	}
	if id := c.String("model"); id != "" {
		var ok bool
		if model, ok = core.LookupModel(id); !ok {
			return fmt.Errorf("%w: %q", core.ErrUnknownModel, id)
		}
	}
	id, err := engine.Chats().CreateSession(ctx, model)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, id)
	return nil
}

func chatList(_ context.Context, c *cli.Context, engine *tekir.Engine) error {
	active, _ := engine.Chats().ActiveID()
	sessions := engine.Chats().SortedByRecent()
	if len(sessions) == 0 {
		fmt.Fprintln(c.App.Writer, dimStyle.Render("no chats"))
		return nil
	}
	for _, sess := range sessions {
		printSession(c.App.Writer, sess, sess.ID == active)
	}
	return nil
}

func chatShow(_ context.Context, c *cli.Context, engine *tekir.Engine) error {
	var sess *core.ChatSession
	if c.Args().Present() {
		id, err := parseID(c, 0)
		if err != nil {
			return err
		}
		if sess, err = engine.Chats().Session(id); err != nil {
			return err
		}
	} else {
		var ok bool
		if sess, ok = engine.Chats().Active(); !ok {
			return fmt.Errorf("no active chat")
		}
	}

	w := c.App.Writer
	printSession(w, sess, false)
	for _, msg := range sess.Messages {
		label := titleStyle.Render("you")
		if msg.Role == core.RoleAssistant {
			label = activeStyle.Render("ai")
		}
		fmt.Fprintf(w, "%s: %s\n", label, msg.Content)
	}
	return nil
}

func chatSelect(ctx context.Context, c *cli.Context, engine *tekir.Engine) error {
	id, err := parseID(c, 0)
	if err != nil {
		return err
	}
	return engine.Chats().SelectSession(ctx, id)
}

func chatRename(ctx context.Context, c *cli.Context, engine *tekir.Engine) error {
	id, err := parseID(c, 0)
	if err != nil {
		return err
	}
	title := strings.Join(c.Args().Tail(), " ")
	return engine.Chats().RenameSession(ctx, id, title)
}

func chatDelete(ctx context.Context, c *cli.Context, engine *tekir.Engine) error {
	id, err := parseID(c, 0)
	if err != nil {
		return err
	}
	return engine.Chats().DeleteSession(ctx, id)
}

func chatModel(ctx context.Context, c *cli.Context, engine *tekir.Engine) error {
	id, err := parseID(c, 0)
	if err != nil {
		return err
	}
	modelID := c.Args().Get(1)
	model, ok := core.LookupModel(modelID)
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrUnknownModel, modelID)
	}
	changed, err := engine.Chats().SetModel(ctx, id, model)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(c.App.Writer, dimStyle.Render("session is locked; model unchanged"))
	}
	return nil
}

func chatSend(ctx context.Context, c *cli.Context, engine *tekir.Engine) error {
	text, err := argsText(c, "message")
	if err != nil {
		return err
	}
	_, reply, err := engine.Conversation().SendActive(ctx, text)
	if err != nil {
		printError(c.App.ErrWriter, "chat", err)
		return err
	}
	fmt.Fprintln(c.App.Writer, reply)
	return nil
}

func chatExport(_ context.Context, c *cli.Context, engine *tekir.Engine) error {
	return chat.Export(c.App.Writer, engine.Chats().SortedByRecent(), c.String("format"))
}

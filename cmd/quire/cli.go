package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/quire/internal/config"
	"github.com/hpungsan/quire/internal/content"
	"github.com/hpungsan/quire/internal/demo"
	"github.com/hpungsan/quire/internal/draft"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/ops"
	"github.com/hpungsan/quire/internal/storage"
	"github.com/hpungsan/quire/internal/store"
	"github.com/hpungsan/quire/internal/web"
)

// newCLIApp creates the CLI application with all commands. backend may be
// nil when only help or version output is needed.
func newCLIApp(backend storage.Backend, cfg *config.Config, logger *slog.Logger) *cli.App {
	var idx *store.Index
	if backend != nil {
		idx = newIndex(backend, cfg, logger)
	}

	app := &cli.App{
		Name:    "quire",
		Usage:   "Newsletter drafts and their sources",
		Version: Version,
		Commands: []*cli.Command{
			newCmd(idx),
			showCmd(idx),
			listCmd(idx),
			saveCmd(idx),
			deleteCmd(idx),
			insertCmd(idx),
			sourceCmd(idx, cfg),
			exportCmd(idx, cfg),
			importCmd(idx, cfg),
			activeCmd(backend, cfg, logger),
			serveCmd(idx, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// newIndex builds the multi-draft store under the configured key prefix.
func newIndex(backend storage.Backend, cfg *config.Config, logger *slog.Logger) *store.Index {
	return store.NewIndex(backend, store.IndexOptions{
		Key:    storage.KeysWithPrefix(cfg.KeyPrefix).Drafts,
		Logger: logger,
	})
}

// newActive builds the single working-draft store, seeded from
// cfg.DemoSeedPath when set.
func newActive(backend storage.Backend, cfg *config.Config, logger *slog.Logger) (*store.Active, error) {
	seed := demo.Default()
	if cfg.DemoSeedPath != "" {
		loaded, err := demo.Load(cfg.DemoSeedPath)
		if err != nil {
			return nil, err
		}
		seed = loaded
	}
	return store.NewActive(backend, store.ActiveOptions{
		Keys:     storage.KeysWithPrefix(cfg.KeyPrefix),
		Seed:     seed,
		Debounce: cfg.Debounce(),
		Logger:   logger,
	}), nil
}

// newCmd creates the new command.
func newCmd(idx *store.Index) *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "Create a draft (optionally reads the body from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Draft title"},
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Treat stdin as Markdown instead of HTML"},
		},
		Action: func(c *cli.Context) error {
			input := ops.CreateInput{Title: c.String("title")}

			if stdinHasData() {
				body, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if c.Bool("markdown") {
					input.Markdown = body
				} else {
					input.Content = body
				}
			}

			output, err := ops.Create(c.Context, idx, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(idx *store.Index) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a draft",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-content", Usage: "Exclude the body from output"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{ID: c.Args().First()}
			if c.Bool("no-content") {
				includeContent := false
				input.IncludeContent = &includeContent
			}

			output, err := ops.Fetch(c.Context, idx, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(idx *store.Index) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List drafts, most recently updated first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Pagination offset"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, idx, ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// saveCmd creates the save command.
func saveCmd(idx *store.Index) *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Update a draft (optionally reads the new body from stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Treat stdin as Markdown instead of HTML"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SaveInput{ID: c.Args().First()}

			if c.IsSet("title") {
				title := c.String("title")
				input.Title = &title
			}
			if stdinHasData() {
				body, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if body != "" {
					if c.Bool("markdown") {
						input.Markdown = &body
					} else {
						input.Content = &body
					}
				}
			}

			output, err := ops.Save(c.Context, idx, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(idx *store.Index) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a draft",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, idx, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// insertCmd creates the insert command.
func insertCmd(idx *store.Index) *cli.Command {
	return &cli.Command{
		Name:      "insert",
		Usage:     "Append a fragment to a draft (reads it from stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Treat stdin as Markdown instead of HTML"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("fragment must be piped via stdin"))
			}
			fragment, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			input := ops.InsertInput{ID: c.Args().First()}
			if c.Bool("markdown") {
				input.Markdown = fragment
			} else {
				input.HTML = fragment
			}

			output, err := ops.Insert(c.Context, idx, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// sourceCmd groups the source subcommands.
func sourceCmd(idx *store.Index, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "source",
		Usage: "Manage a draft's sources",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Attach a link, text or pdf source (text and pdf read stdin)",
				ArgsUsage: "<draft-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Value: "link", Usage: "Source type: link|text|pdf"},
					&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "URL (link sources)"},
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Title (derived when omitted)"},
				},
				Action: func(c *cli.Context) error {
					input := ops.AddSourceInput{
						ID:    c.Args().First(),
						Type:  c.String("type"),
						Title: c.String("title"),
						URL:   c.String("url"),
					}
					if input.Type != "link" && stdinHasData() {
						text, err := readStdin()
						if err != nil {
							return outputError(errors.NewInternal(err))
						}
						input.Content = text
					}

					output, err := ops.AddSource(c.Context, idx, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "remove",
				Usage:     "Detach a source",
				ArgsUsage: "<draft-id> <source-id>",
				Action: func(c *cli.Context) error {
					output, err := ops.RemoveSource(c.Context, idx, ops.RemoveSourceInput{
						ID:       c.Args().Get(0),
						SourceID: c.Args().Get(1),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "feed",
				Usage:     "Attach the newest items of an RSS, Atom or JSON feed as link sources",
				ArgsUsage: "<draft-id> <feed-url>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: cfg.FeedLimit, Usage: "Max items"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ImportFeed(c.Context, idx, ops.ImportFeedInput{
						ID:    c.Args().Get(0),
						URL:   c.Args().Get(1),
						Limit: c.Int("limit"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "clip",
				Usage:     "Fetch a web page and attach its readable text as a text source",
				ArgsUsage: "<draft-id> <page-url>",
				Action: func(c *cli.Context) error {
					output, err := ops.Clip(c.Context, nil, idx, ops.ClipInput{
						ID:  c.Args().Get(0),
						URL: c.Args().Get(1),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// exportCmd creates the export command.
func exportCmd(idx *store.Index, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a draft to a Markdown file",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"o"}, Usage: "Output path (default: ~/.quire/exports/<title>-<timestamp>.md)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, idx, cfg, ops.ExportInput{
				ID:   c.Args().First(),
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(idx *store.Index, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Create a draft from a Markdown file",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, idx, cfg, ops.ImportInput{Path: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// activeOutput is the CLI view of the working draft.
type activeOutput struct {
	Origin   store.Origin       `json:"origin"`
	Demo     bool               `json:"demo"`
	Draft    draft.Draft        `json:"draft"`
	Meta     draft.Meta         `json:"meta"`
	Messages []demo.ChatMessage `json:"messages,omitempty"`
}

// activeCmd groups the working-draft subcommands. Each run loads the
// draft, applies one change and flushes the debounced write before exit.
func activeCmd(backend storage.Backend, cfg *config.Config, logger *slog.Logger) *cli.Command {
	run := func(c *cli.Context, demoRequested bool, fn func(*store.Active) error) error {
		a, err := newActive(backend, cfg, logger)
		if err != nil {
			return outputError(errors.NewInvalidRequest(fmt.Sprintf("demo seed: %v", err)))
		}
		a.Load(c.Context, demoRequested)
		if fn != nil {
			if err := fn(a); err != nil {
				return outputError(err)
			}
		}
		a.Flush()
		return outputJSON(activeOutput{
			Origin:   a.Origin(),
			Demo:     a.IsDemo(),
			Draft:    a.Draft(),
			Meta:     a.Meta(),
			Messages: a.Messages(),
		})
	}

	markdownFlag := &cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Treat stdin as Markdown instead of HTML"}

	return &cli.Command{
		Name:  "active",
		Usage: "Work on the single active draft",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the active draft (seeded with the demo on first use)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "demo", Usage: "Show the demo when no draft is saved"},
				},
				Action: func(c *cli.Context) error {
					return run(c, c.Bool("demo"), nil)
				},
			},
			{
				Name:      "title",
				Usage:     "Set the title",
				ArgsUsage: "<title>",
				Action: func(c *cli.Context) error {
					return run(c, false, func(a *store.Active) error {
						return a.UpdateTitle(strings.Join(c.Args().Slice(), " "))
					})
				},
			},
			{
				Name:  "content",
				Usage: "Replace the body (reads stdin)",
				Flags: []cli.Flag{markdownFlag},
				Action: func(c *cli.Context) error {
					body, err := readBody(c.Bool("markdown"))
					if err != nil {
						return outputError(err)
					}
					return run(c, false, func(a *store.Active) error {
						return a.UpdateContent(body)
					})
				},
			},
			{
				Name:  "insert",
				Usage: "Append a fragment to the body (reads stdin)",
				Flags: []cli.Flag{markdownFlag},
				Action: func(c *cli.Context) error {
					fragment, err := readBody(c.Bool("markdown"))
					if err != nil {
						return outputError(err)
					}
					return run(c, false, func(a *store.Active) error {
						return a.InsertHTML(fragment)
					})
				},
			},
			{
				Name:  "add-source",
				Usage: "Attach a source (text and pdf read stdin)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Value: "link", Usage: "Source type: link|text|pdf"},
					&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "URL (link sources)"},
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Title (derived when omitted)"},
				},
				Action: func(c *cli.Context) error {
					var text string
					if c.String("type") != "link" && stdinHasData() {
						var err error
						if text, err = readStdin(); err != nil {
							return outputError(errors.NewInternal(err))
						}
					}
					s, err := ops.BuildSource(c.String("type"), c.String("title"), c.String("url"), text)
					if err != nil {
						return outputError(err)
					}
					return run(c, false, func(a *store.Active) error {
						return a.AddSource(s)
					})
				},
			},
			{
				Name:      "remove-source",
				Usage:     "Detach a source",
				ArgsUsage: "<source-id>",
				Action: func(c *cli.Context) error {
					return run(c, false, func(a *store.Active) error {
						return a.RemoveSource(c.Args().First())
					})
				},
			},
			{
				Name:  "dismiss",
				Usage: "Discard the demo and start from an empty draft",
				Action: func(c *cli.Context) error {
					return run(c, false, func(a *store.Active) error {
						return a.DismissDemo(c.Context)
					})
				},
			},
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(idx *store.Index, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the read-mostly web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8484, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			return web.Run(web.NewServer(idx, cfg, Version, c.String("bind"), c.Int("port")))
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var qErr *errors.QuireError
	if stderrors.As(err, &qErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", qErr.Code, qErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readBody reads an HTML or Markdown body from stdin and returns sanitized HTML.
func readBody(markdown bool) (string, error) {
	if !stdinHasData() {
		return "", errors.NewInvalidRequest("body must be piped via stdin")
	}
	body, err := readStdin()
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if markdown {
		if body, err = content.FromMarkdown(body); err != nil {
			return "", errors.NewInvalidRequest("invalid markdown: " + err.Error())
		}
	}
	return content.Sanitize(body), nil
}

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/config"
	"github.com/hpungsan/refcat/internal/errors"
	"github.com/hpungsan/refcat/internal/index"
	"github.com/hpungsan/refcat/internal/loader"
	"github.com/hpungsan/refcat/internal/mcp"
	"github.com/hpungsan/refcat/internal/ops"
	"github.com/hpungsan/refcat/internal/web"
)

// stdout is where command output goes. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// env carries the dependencies shared by all commands.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	stdin  io.Reader
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, logger *slog.Logger) *cli.App {
	e := &env{cfg: cfg, logger: logger, stdin: os.Stdin}

	app := &cli.App{
		Name:    "refcat",
		Usage:   "Query a Markdown reference document as a catalog",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "doc", Aliases: []string{"d"}, EnvVars: []string{"REFCAT_DOC"}, Usage: "Reference document (Markdown or HTML; - reads stdin)"},
			&cli.BoolFlag{Name: "html", Usage: "Parse the document as HTML regardless of extension"},
			&cli.StringFlag{Name: "selector", Usage: "CSS selector for the HTML content root"},
		},
		Commands: []*cli.Command{
			categoriesCmd(e),
			listCmd(e),
			searchCmd(e),
			showCmd(e),
			exportCmd(e),
			lintCmd(e),
			serveCmd(e),
			mcpCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// categoriesCmd creates the categories command.
func categoriesCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List categories with entry counts",
		Action: func(c *cli.Context) error {
			cat, err := e.load(c)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(ops.Categories(cat))
		},
	}
}

// listCmd creates the list command.
func listCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List entry summaries in document order",
		Flags: pageFlags(),
		Action: func(c *cli.Context) error {
			cat, err := e.load(c)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(ops.List(cat, ops.ListInput{
				Category: c.String("category"),
				Limit:    c.Int("limit"),
				Offset:   c.Int("offset"),
			}))
		},
	}
}

// searchCmd creates the search command.
func searchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find entries by title substring, or by full text with --fulltext",
		ArgsUsage: "<query>",
		Flags: append(pageFlags(),
			&cli.BoolFlag{Name: "fulltext", Aliases: []string{"f"}, Usage: "Search bodies and code too, ranked by relevance"},
		),
		Action: func(c *cli.Context) error {
			query := c.Args().First()

			cat, err := e.load(c)
			if err != nil {
				return outputError(err)
			}

			if !c.Bool("fulltext") {
				output, err := ops.Search(cat, ops.SearchInput{
					Query:    query,
					Category: c.String("category"),
					Limit:    c.Int("limit"),
					Offset:   c.Int("offset"),
				})
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}

			db, err := index.Open(c.Context, cat)
			if err != nil {
				return outputError(err)
			}
			defer db.Close()

			output, err := ops.FullText(c.Context, db, ops.FullTextInput{
				Query:    query,
				Category: c.String("category"),
				Limit:    c.Int("limit"),
				Offset:   c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show one entry by category and title",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category name"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Entry title"},
			&cli.BoolFlag{Name: "no-body", Usage: "Exclude body and code from output"},
		},
		Action: func(c *cli.Context) error {
			cat, err := e.load(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.ShowInput{
				Category: c.String("category"),
				Title:    c.String("title"),
			}
			if c.Bool("no-body") {
				includeBody := false
				input.IncludeBody = &includeBody
			}

			output, err := ops.Show(cat, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the catalog as Markdown, HTML or JSONL (stdout unless --path)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Usage: "Output format: md|html|jsonl (default: from --path, else md)"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Write to this file instead of stdout"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Export only this category"},
		},
		Action: func(c *cli.Context) error {
			cat, err := e.load(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.ExportInput{
				Path:     c.String("path"),
				Format:   c.String("format"),
				Category: c.String("category"),
			}

			output, err := ops.Export(c.Context, cat, input, stdout)
			if err != nil {
				return outputError(err)
			}
			// Without a path the export itself was the output
			if input.Path == "" {
				return nil
			}
			return outputJSON(output)
		},
	}
}

// lintCmd creates the lint command.
func lintCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "lint",
		Usage: "Report likely mistakes in the reference document",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strict", Usage: "Exit with status 1 when there are warnings"},
		},
		Action: func(c *cli.Context) error {
			cat, err := e.load(c)
			if err != nil {
				return outputError(err)
			}

			output := ops.Lint(cat)
			if err := outputJSON(output); err != nil {
				return err
			}
			if c.Bool("strict") && output.Count > 0 {
				return cli.Exit(fmt.Sprintf("%d lint warning(s)", output.Count), 1)
			}
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Browse the catalog in a web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Interface to listen on (default: config web_bind)"},
			&cli.IntFlag{Name: "port", Usage: "Port to listen on (default: config web_port)"},
		},
		Action: func(c *cli.Context) error {
			cat, err := e.load(c)
			if err != nil {
				return outputError(err)
			}

			db := e.openIndex(c.Context, cat)
			if db != nil {
				defer db.Close()
			}

			bind := e.cfg.WebBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := e.cfg.WebPort
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv, err := web.NewServer(cat, db, Version, bind, port, e.logger)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, e.logger)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the catalog over MCP on stdio",
		Action: func(c *cli.Context) error {
			doc := c.String("doc")
			if doc == "" {
				doc = e.cfg.Document
			}
			if err := runMCP(e, doc); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// runMCP loads doc and serves it over MCP until stdin closes.
func runMCP(e *env, doc string) error {
	if unknown := mcp.ValidateDisabledTools(e.cfg.DisabledTools); len(unknown) > 0 {
		e.logger.Warn("unknown tools in disabled_tools", "tools", unknown)
	}
	if unknown := mcp.ValidateDisabledTypes(e.cfg.DisabledTypes); len(unknown) > 0 {
		e.logger.Warn("unknown types in disabled_types", "types", unknown)
	}

	// stdin carries the protocol, so the document must be a file
	if doc == "" || doc == "-" {
		return errors.NewInvalidRequest("mcp mode needs a document file: pass --doc or set \"document\" in config")
	}
	cat, err := loader.LoadFile(doc, e.loaderOptions(false, ""))
	if err != nil {
		return err
	}

	db := e.openIndex(context.Background(), cat)
	if db != nil {
		defer db.Close()
	}

	return mcp.Run(cat, db, e.cfg, Version, e.logger)
}

// load reads the document named by --doc (or the configured document).
func (e *env) load(c *cli.Context) (*catalog.Catalog, error) {
	doc := c.String("doc")
	if doc == "" {
		doc = e.cfg.Document
	}
	if doc == "" {
		return nil, errors.NewInvalidRequest("no document: pass --doc or set \"document\" in config")
	}

	opts := e.loaderOptions(c.Bool("html"), c.String("selector"))
	if doc == "-" {
		return loader.LoadReader(e.stdin, opts)
	}
	return loader.LoadFile(doc, opts)
}

func (e *env) loaderOptions(html bool, selector string) loader.Options {
	if selector == "" {
		selector = e.cfg.HTMLSelector
	}
	return loader.Options{
		MaxBytes: e.cfg.MaxDocumentBytes,
		HTML:     html,
		Selector: selector,
		Logger:   e.logger,
	}
}

// openIndex builds the full-text index. Failure is logged and leaves
// full-text search disabled.
func (e *env) openIndex(ctx context.Context, cat *catalog.Catalog) *sql.DB {
	db, err := index.Open(ctx, cat)
	if err != nil {
		e.logger.Warn("full-text index unavailable", "error", err)
		return nil
	}
	if n, err := index.Count(ctx, db); err == nil {
		e.logger.Debug("full-text index built", "entries", n, "checksum", cat.Checksum())
	}
	return db
}

// pageFlags are shared by list and search.
func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Restrict to one category"},
		&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum results (max 100)"},
		&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Results to skip"},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var rErr *errors.RefcatError
	if stderrors.As(err, &rErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", rErr.Code, rErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

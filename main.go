package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gtonic/legalapi-cli/pkg/cli"
	"github.com/gtonic/legalapi-cli/pkg/config"
	"github.com/gtonic/legalapi-cli/pkg/legalapi"
	"github.com/gtonic/legalapi-cli/pkg/markdown"
	"github.com/gtonic/legalapi-cli/pkg/mcp"
	"github.com/gtonic/legalapi-cli/pkg/rest"
	"github.com/gtonic/legalapi-cli/pkg/store"

	"github.com/joho/godotenv"
)

var version string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	godotenv.Load()

	app := initApp()

	if err := app.Run(ctx, os.Args); err != nil {
		cli.Fatal(err)
	}
}

func initApp() cli.Command {
	return cli.Command{
		Usage: "Legal API Client",

		Suggest: true,
		Version: version,

		HideHelpCommand: true,

		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Config File",
			},

			&cli.StringFlag{
				Name:  "token",
				Usage: "API Token",
			},

			&cli.StringFlag{
				Name:  "url",
				Usage: "API Base URL",
			},

			&cli.StringFlag{
				Name:  "timeout",
				Usage: "Request Timeout",
			},

			&cli.IntFlag{
				Name:  "retries",
				Usage: "Retries on transient failures",

				Value: -1,
			},

			&cli.StringFlag{
				Name:  "backoff",
				Usage: "Backoff base delay",
			},

			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Verbose logging",
			},
		},

		Commands: []*cli.Command{
			{
				Name:  "endpoints",
				Usage: "List all known operations",

				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(ctx, cmd)

					if err != nil {
						return err
					}

					if collisions := client.Collisions(); collisions > 0 {
						cli.Infof("warning: schema contains %d duplicate operation ids", collisions)
					}

					for _, op := range client.Catalog().All() {
						fmt.Println(op.String())
					}

					return nil
				},
			},

			{
				Name:      "describe",
				Usage:     "Show operation documentation",
				ArgsUsage: "[operation]",

				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(ctx, cmd)

					if err != nil {
						return err
					}

					var sb strings.Builder

					for _, op := range client.Catalog().All() {
						if id := cmd.Args().First(); id != "" && id != op.ID {
							continue
						}

						sb.WriteString(fmt.Sprintf("# %s\n\n", op.ID))
						sb.WriteString(fmt.Sprintf("`%s %s`\n\n", op.Method, op.Path))
						sb.WriteString(op.Doc() + "\n\n")

						if len(op.PathParams) > 0 {
							sb.WriteString("Path parameters: `" + strings.Join(op.PathParams, "`, `") + "`\n\n")
						}

						if len(op.QueryParams) > 0 {
							sb.WriteString("Query parameters: `" + strings.Join(op.QueryParams, "`, `") + "`\n\n")
						}
					}

					if sb.Len() == 0 {
						return fmt.Errorf("unknown operation %q", cmd.Args().First())
					}

					markdown.Render(os.Stdout, sb.String())
					return nil
				},
			},

			{
				Name:      "call",
				Usage:     "Call an operation by id",
				ArgsUsage: "<operation>",

				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "query",
						Usage: "Query parameter (key=value)",
					},

					&cli.StringSliceFlag{
						Name:  "path",
						Usage: "Path parameter (key=value)",
					},

					&cli.StringSliceFlag{
						Name:  "header",
						Usage: "Header override (key=value)",
					},

					&cli.StringFlag{
						Name:  "body",
						Usage: "JSON request body (or @file)",
					},

					&cli.StringSliceFlag{
						Name:  "file",
						Usage: "File attachment (name=path)",
					},

					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip confirmation for mutating operations",
					},
				},

				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()

					if id == "" {
						return errors.New("missing operation id")
					}

					client, err := newClient(ctx, cmd)

					if err != nil {
						return err
					}

					op, ok := client.Operation(id)

					if !ok {
						return fmt.Errorf("unknown operation %q (try: legalapi endpoints)", id)
					}

					args, closeFiles, err := parseArgs(cmd)

					if err != nil {
						return err
					}

					defer closeFiles()

					if !cmd.Bool("yes") && op.Method != http.MethodGet && op.Method != http.MethodHead {
						ok, err := cli.Confirm(fmt.Sprintf("%s %s, are you sure?", op.Method, op.Path), false)

						if err != nil {
							return err
						}

						if !ok {
							return errors.New("operation cancelled by user")
						}
					}

					result, err := client.Call(ctx, id, args)

					if err != nil {
						return err
					}

					return printResult(result)
				},
			},

			{
				Name:  "search",
				Usage: "Search the bankruptcy registry",

				Flags: queryFlags(),

				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(ctx, cmd)

					if err != nil {
						return err
					}

					result, err := client.SearchEFRSB(ctx, queryValues(cmd))

					if err != nil {
						return err
					}

					return printResult(result)
				},
			},

			{
				Name:  "debtor",
				Usage: "Look up a debtor",

				Flags: append(queryFlags(),
					&cli.StringFlag{
						Name:  "id",
						Usage: "Debtor id (path parameter)",
					},
				),

				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(ctx, cmd)

					if err != nil {
						return err
					}

					args := rest.Args{
						Query: queryValues(cmd),
					}

					if id := cmd.String("id"); id != "" {
						args.Path = map[string]string{"id": id}
					}

					result, err := client.Debtor(ctx, args)

					if err != nil {
						return err
					}

					return printResult(result)
				},
			},

			{
				Name:  "case",
				Usage: "Look up a bankruptcy case",

				Flags: append(queryFlags(),
					&cli.StringFlag{
						Name:  "id",
						Usage: "Case id (path parameter)",
					},
				),

				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(ctx, cmd)

					if err != nil {
						return err
					}

					args := rest.Args{
						Query: queryValues(cmd),
					}

					if id := cmd.String("id"); id != "" {
						args.Path = map[string]string{"id": id}
					}

					result, err := client.Case(ctx, args)

					if err != nil {
						return err
					}

					return printResult(result)
				},
			},

			{
				Name:  "notices",
				Usage: "List registry notices",

				Flags: append(queryFlags(),
					&cli.StringFlag{
						Name:  "save",
						Usage: "Archive results to a SQLite file",
					},
				),

				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(ctx, cmd)

					if err != nil {
						return err
					}

					result, err := client.Notices(ctx, queryValues(cmd))

					if err != nil {
						return err
					}

					if path := cmd.String("save"); path != "" {
						if err := saveNotices(path, result); err != nil {
							return err
						}
					}

					return printResult(result)
				},
			},

			{
				Name:  "mcp",
				Usage: "Serve catalog operations as MCP tools over stdio",

				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(ctx, cmd)

					if err != nil {
						return err
					}

					return mcp.Serve(client, version)
				},
			},
		},
	}
}

func newClient(ctx context.Context, cmd *cli.Command) (*legalapi.Client, error) {
	cfg, err := config.Lookup(cmd.String("config"))

	if err != nil {
		return nil, err
	}

	if cfg == nil {
		cfg = &config.Config{}
	}

	token := cmd.String("token")

	if token == "" {
		token = os.Getenv("LEGAL_API_TOKEN")
	}

	if token == "" {
		token = cfg.Token
	}

	if token == "" {
		return nil, errors.New("missing API token (set LEGAL_API_TOKEN, --token or a config file)")
	}

	var options []legalapi.Option

	baseURL := cmd.String("url")

	if baseURL == "" {
		baseURL = os.Getenv("LEGAL_API_URL")
	}

	if baseURL == "" {
		baseURL = cfg.BaseURL
	}

	if baseURL != "" {
		options = append(options, legalapi.WithBaseURL(baseURL))
	}

	if s := cmd.String("timeout"); s != "" {
		timeout, err := time.ParseDuration(s)

		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}

		options = append(options, legalapi.WithTimeout(timeout))
	} else if cfg.Timeout > 0 {
		options = append(options, legalapi.WithTimeout(cfg.TimeoutDuration()))
	}

	if retries := int(cmd.Int("retries")); retries >= 0 {
		options = append(options, legalapi.WithRetries(retries))
	} else if cfg.Retries > 0 {
		options = append(options, legalapi.WithRetries(cfg.Retries))
	}

	if s := cmd.String("backoff"); s != "" {
		backoff, err := time.ParseDuration(s)

		if err != nil {
			return nil, fmt.Errorf("invalid backoff: %w", err)
		}

		options = append(options, legalapi.WithBackoff(backoff))
	} else if cfg.Backoff > 0 {
		options = append(options, legalapi.WithBackoff(cfg.BackoffDuration()))
	}

	level := slog.LevelWarn

	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	options = append(options, legalapi.WithLogger(logger))

	return legalapi.New(ctx, token, options...)
}

func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "query",
			Usage: "Query parameter (key=value)",
		},

		&cli.StringFlag{
			Name:  "inn",
			Usage: "Debtor INN",
		},

		&cli.StringFlag{
			Name:  "limit",
			Usage: "Page size",
		},

		&cli.StringFlag{
			Name:  "offset",
			Usage: "Page offset",
		},
	}
}

func queryValues(cmd *cli.Command) url.Values {
	query := url.Values{}

	for _, kv := range cmd.StringSlice("query") {
		if k, v, ok := strings.Cut(kv, "="); ok {
			query.Add(k, v)
		}
	}

	for _, name := range []string{"inn", "limit", "offset"} {
		if value := cmd.String(name); value != "" {
			query.Set(name, value)
		}
	}

	return query
}

func parseArgs(cmd *cli.Command) (rest.Args, func(), error) {
	args := rest.Args{
		Path:   map[string]string{},
		Query:  url.Values{},
		Header: http.Header{},
	}

	for _, kv := range cmd.StringSlice("query") {
		if k, v, ok := strings.Cut(kv, "="); ok {
			args.Query.Add(k, v)
		}
	}

	for _, kv := range cmd.StringSlice("path") {
		if k, v, ok := strings.Cut(kv, "="); ok {
			args.Path[k] = v
		}
	}

	for _, kv := range cmd.StringSlice("header") {
		if k, v, ok := strings.Cut(kv, "="); ok {
			args.Header.Set(k, v)
		}
	}

	if body := cmd.String("body"); body != "" {
		data := []byte(body)

		if strings.HasPrefix(body, "@") {
			var err error

			if data, err = os.ReadFile(body[1:]); err != nil {
				return args, func() {}, err
			}
		}

		var value any

		if err := json.Unmarshal(data, &value); err != nil {
			return args, func() {}, fmt.Errorf("invalid JSON body: %w", err)
		}

		args.Body = value
	}

	var files []*os.File

	closeFiles := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, kv := range cmd.StringSlice("file") {
		name, path, ok := strings.Cut(kv, "=")

		if !ok {
			return args, closeFiles, fmt.Errorf("invalid file attachment %q (want name=path)", kv)
		}

		f, err := os.Open(path)

		if err != nil {
			return args, closeFiles, err
		}

		files = append(files, f)

		if args.Files == nil {
			args.Files = map[string]io.Reader{}
		}

		args.Files[name] = f
	}

	return args, closeFiles, nil
}

func printResult(result *rest.Result) error {
	value, err := result.Value()

	if err != nil {
		return err
	}

	if raw, ok := value.([]byte); ok {
		os.Stdout.Write(raw)
		return nil
	}

	data, err := json.MarshalIndent(value, "", "  ")

	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}

func saveNotices(path string, result *rest.Result) error {
	value, err := result.Value()

	if err != nil {
		return err
	}

	items := noticeItems(value)

	if len(items) == 0 {
		cli.Info("no notices to archive")
		return nil
	}

	s, err := store.New(path)

	if err != nil {
		return err
	}

	defer s.Close()

	notices := make([]store.Notice, 0, len(items))

	for _, item := range items {
		notices = append(notices, store.FromPayload(item))
	}

	if err := s.Save(notices...); err != nil {
		return err
	}

	cli.Infof("archived %d notices to %s", len(notices), path)
	return nil
}

// noticeItems digs the list of notice objects out of a response that is
// either a bare array or an envelope with a conventional list key.
func noticeItems(value any) []map[string]any {
	var list []any

	switch v := value.(type) {
	case []any:
		list = v

	case map[string]any:
		for _, key := range []string{"items", "data", "results", "messages", "notices"} {
			if inner, ok := v[key].([]any); ok {
				list = inner
				break
			}
		}
	}

	var items []map[string]any

	for _, entry := range list {
		if item, ok := entry.(map[string]any); ok {
			items = append(items, item)
		}
	}

	return items
}

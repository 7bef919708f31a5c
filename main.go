package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/thedittmer/intel-hub/internal/config"
	"github.com/thedittmer/intel-hub/internal/failure"
	"github.com/thedittmer/intel-hub/internal/hub"
	"github.com/thedittmer/intel-hub/internal/storage"
)

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitDataError    = 3
	ExitConfigError  = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp()
	if err := app.RunContext(ctx, os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Error())
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitGeneralError)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "intel-hub",
		Usage:   "AI research and news dashboard for the terminal",
		Version: "0.1.0",
		// Exit codes are handled in main so deferred cleanup runs.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory for config, state and credentials",
				EnvVars: []string{config.EnvDataDir},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (default: <data-dir>/config.yaml)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log source and store operations",
			},
		},
		Action: runInteractive,
		Commands: []*cli.Command{
			{
				Name:  "refresh",
				Usage: "Fetch papers, blogs and news into a new feed",
				Flags: append(selectionFlags(),
					&cli.IntFlag{
						Name:    "days",
						Aliases: []string{"d"},
						Usage:   "Recency window in days (default from config)",
					},
				),
				Action: refreshCmd,
			},
			{
				Name:   "show",
				Usage:  "Show the current feed",
				Flags:  []cli.Flag{jsonFlag()},
				Action: showCmd,
			},
			{
				Name:      "summarize",
				Usage:     "Summarize a feed item",
				ArgsUsage: "<number|id>",
				Action:    summarizeCmd,
			},
			{
				Name:      "save",
				Usage:     "Bookmark a feed item",
				ArgsUsage: "<number|id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "memo",
						Aliases: []string{"m"},
						Usage:   "Memo stored with the bookmark (default: cached summary)",
					},
				},
				Action: saveCmd,
			},
			{
				Name:  "bookmarks",
				Usage: "Manage bookmarks",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List bookmarks",
						Flags:  []cli.Flag{jsonFlag()},
						Action: listBookmarksCmd,
					},
					{
						Name:      "delete",
						Usage:     "Delete a bookmark",
						ArgsUsage: "<id>",
						Action:    deleteBookmarkCmd,
					},
					{
						Name:  "export",
						Usage: "Export bookmarks to an xlsx workbook",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "output",
								Aliases: []string{"o"},
								Value:   "intel-hub-bookmarks.xlsx",
								Usage:   "Output file",
							},
						},
						Action: exportBookmarksCmd,
					},
				},
			},
			{
				Name:  "blogs",
				Usage: "Manage blog feeds",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List configured blogs",
						Flags:  []cli.Flag{jsonFlag()},
						Action: listBlogsCmd,
					},
					{
						Name:      "add",
						Usage:     "Add a blog feed",
						ArgsUsage: "<name> <feed-url>",
						Action:    addBlogCmd,
					},
				},
			},
			{
				Name:  "init-sheet",
				Usage: "Create a Google Sheets spreadsheet for bookmarks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "share",
						Usage: "Email address to share the spreadsheet with",
					},
				},
				Action: initSheetCmd,
			},
			{
				Name:   "interactive",
				Usage:  "Interactive menu (default)",
				Action: runInteractive,
			},
		},
	}
}

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "papers", Usage: "Paper categories to fetch (default: all configured)"},
		&cli.StringSliceFlag{Name: "blogs", Usage: "Blogs to fetch (default: all configured)"},
		&cli.StringSliceFlag{Name: "news", Usage: "News keywords to search (default: all configured)"},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output JSON"}
}

// openHub loads configuration and builds the hub. Configuration problems,
// including missing secrets, exit with ExitConfigError.
func openHub(c *cli.Context) (*hub.Hub, error) {
	verbose := c.Bool("verbose")

	dataDir := c.String("data-dir")
	if dataDir == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, cli.Exit(fmt.Sprintf("Error getting home directory: %v", err), ExitConfigError)
		}
		dataDir = dir
	}

	store, err := storage.NewStorage(dataDir)
	if err != nil {
		return nil, cli.Exit(err.Error(), ExitConfigError)
	}

	configPath := c.String("config")
	if configPath == "" {
		configPath = store.ConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("Error loading config: %v", err), ExitConfigError)
	}

	extra, err := store.LoadBlogs()
	if err != nil {
		return nil, cli.Exit(err.Error(), ExitConfigError)
	}
	cfg.MergeBlogs(extra)

	if err := cfg.CheckSecrets(store.Dir()); err != nil {
		return nil, cli.Exit(fmt.Sprintf("Configuration error: %v", err), ExitConfigError)
	}

	if verbose {
		log.Printf("Using data directory %s", store.Dir())
	}

	h, err := hub.New(c.Context, cfg, store, verbose)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitCodeFor(err))
	}
	return h, nil
}

// exitCodeFor maps a classified failure to a process exit code.
func exitCodeFor(err error) int {
	switch failure.Classify(err) {
	case "":
		return ExitSuccess
	case failure.Config, failure.Auth:
		return ExitConfigError
	case failure.Network, failure.RateLimit, failure.Malformed:
		return ExitDataError
	default:
		return ExitGeneralError
	}
}

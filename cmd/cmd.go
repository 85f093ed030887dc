// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles config creation and database initialization
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write the starter config and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles Pocket authorization
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Pocket authorization",
		Commands: []*cli.Command{
			{
				Name:  "pocket",
				Usage: "Authorize with Pocket and store the access token",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Local user ID",
						Value:   1,
					},
				},
				Action: r.AuthPocket,
			},
			{
				Name:  "status",
				Usage: "Check a user's authorization state",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Local user ID",
						Value:   1,
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// syncCommand handles Pocket reconciliation
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync a user's Pocket saves into local storage",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Local user ID",
				Value:   1,
			},
			&cli.BoolFlag{
				Name:  "full",
				Usage: "Ignore the stored watermark and re-fetch everything",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Sync,
	}
}

// trendsCommand lists trending searches
func trendsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "trends",
		Usage: "List today's trending searches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "geo",
				Usage: "Two-letter region code (defaults to config)",
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Trend day buckets to include (defaults to config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Trends,
	}
}

// relevantCommand builds the daily digest
func relevantCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "relevant",
		Usage: "Match saved items against today's trends and build the digest",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Local user ID",
				Value:   1,
			},
			&cli.StringFlag{
				Name:  "geo",
				Usage: "Two-letter region code (defaults to config)",
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Trend day buckets to include (defaults to config)",
			},
			&cli.BoolFlag{
				Name:  "email",
				Usage: "Send the digest through SendGrid",
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "Sender address (defaults to config)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the digest instead of sending it",
			},
		},
		Action: r.Relevant,
	}
}

// itemsCommand handles operations on synced saved items
func itemsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "Work with synced saved items",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List a user's saved items",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Local user ID",
						Value:   1,
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "Maximum number of items to return",
					},
					&cli.BoolFlag{
						Name:  "oldest",
						Usage: "Sort by time added, oldest saves first",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ItemsList,
			},
			{
				Name:  "search",
				Usage: "Rank saved items against a keyword phrase",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
						Max:  1,
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Local user ID",
						Value:   1,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ItemsSearch,
			},
			{
				Name:  "random",
				Usage: "Resurface one stored item at random",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Local user ID",
						Value:   1,
					},
				},
				Action: r.ItemsRandom,
			},
			{
				Name:  "archive",
				Usage: "Archive an item on Pocket and remove it locally",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Local user ID",
						Value:   1,
					},
					&cli.IntFlag{
						Name:     "item",
						Aliases:  []string{"i"},
						Usage:    "Saved item ID",
						Required: true,
					},
				},
				Action: r.ItemsArchive,
			},
			{
				Name:  "delete",
				Usage: "Delete an item on Pocket and remove it locally",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Local user ID",
						Value:   1,
					},
					&cli.IntFlag{
						Name:     "item",
						Aliases:  []string{"i"},
						Usage:    "Saved item ID",
						Required: true,
					},
				},
				Action: r.ItemsDelete,
			},
			{
				Name:  "favorite",
				Usage: "Favorite an item on Pocket",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Local user ID",
						Value:   1,
					},
					&cli.IntFlag{
						Name:     "item",
						Aliases:  []string{"i"},
						Usage:    "Saved item ID",
						Required: true,
					},
				},
				Action: r.ItemsFavorite,
			},
			{
				Name:  "export",
				Usage: "Export saved items to files",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Local user ID (0 exports every user)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: json, csv, markdown, or txt",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
				},
				Action: r.ItemsExport,
			},
		},
	}
}

// usersCommand handles local account management
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage local user accounts",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a user",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "email",
						Max:  1,
					},
				},
				Action: r.UsersAdd,
			},
			{
				Name:  "list",
				Usage: "List all users",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.UsersList,
			},
			{
				Name:  "get",
				Usage: "Show one user",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Local user ID",
						Value:   1,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.UsersGet,
			},
			{
				Name:  "update",
				Usage: "Change a user's email address",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Local user ID",
						Value:   1,
					},
					&cli.StringFlag{
						Name:     "email",
						Usage:    "New email address",
						Required: true,
					},
				},
				Action: r.UsersUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a user and their synced items",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Local user ID",
						Value:   1,
					},
				},
				Action: r.UsersDelete,
			},
		},
	}
}

// lookupCommand handles context lookups for saved URLs
func lookupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lookup",
		Usage: "Look up context for a saved URL",
		Commands: []*cli.Command{
			{
				Name:  "hn",
				Usage: "Find the best Hacker News discussion of a URL",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "url",
						Max:  1,
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.LookupHackerNews,
			},
			{
				Name:  "wayback",
				Usage: "Find the closest archived snapshot of a URL",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "url",
						Max:  1,
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.LookupWayback,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive review.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"review", "ui"},
		Usage:   "Review trend-relevant saves interactively",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Local user ID",
				Value:   1,
			},
		},
		Action: r.TUI,
	}
}

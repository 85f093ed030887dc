package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/recall/internal/relevance"
	"github.com/desertthunder/recall/internal/repositories"
	"github.com/desertthunder/recall/internal/services"
	"github.com/desertthunder/recall/internal/shared"
	"github.com/desertthunder/recall/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	store      *repositories.Store
	pocket     *services.PocketService
	trends     *services.TrendsService
	mailer     *services.SendGridService
	hackernews *services.HackerNewsService
	wayback    *services.WaybackService
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Store is optional. When nil, commands that touch storage open a connection
// from the configured database URL and close it when they finish.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      *repositories.Store
	Pocket     *services.PocketService
	Trends     *services.TrendsService
	Mailer     *services.SendGridService
	HackerNews *services.HackerNewsService
	Wayback    *services.WaybackService
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		pocket:     opts.Pocket,
		trends:     opts.Trends,
		mailer:     opts.Mailer,
		hackernews: opts.HackerNews,
		wayback:    opts.Wayback,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger after construction.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, syncCommand, trendsCommand, relevantCommand, itemsCommand, usersCommand, lookupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// withStore runs fn with an open [repositories.Store]. An injected store is
// reused and left open; otherwise one is opened from the configured database
// URL, migrated, and closed when fn returns.
func (r *Runner) withStore(fn func(*repositories.Store) error) error {
	if r.store != nil {
		return fn(r.store)
	}

	store, err := repositories.Open(r.config.Database.URL, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(store)
}

// newEngine builds a sync engine over the store, ranking with an index over
// the same item repository.
func (r *Runner) newEngine(store *repositories.Store) *tasks.Engine {
	return tasks.NewEngine(
		store.Users,
		store.Items,
		r.collections(),
		relevance.NewIndex(store.Items),
		tasks.EngineOpts{PageSize: r.config.Sync.PageSize},
		r.logger,
	)
}

// collections returns the factory binding a user's access token to the
// Pocket API. It fails before any network call when no consumer key was
// configured.
func (r *Runner) collections() tasks.CollectionFactory {
	return func(accessToken string) (tasks.RemoteCollection, error) {
		if r.pocket == nil {
			return nil, fmt.Errorf("%w: pocket consumer_key is not configured", shared.ErrMissingCredentials)
		}
		return r.pocket.ForUser(accessToken)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// stringArg returns the parsed value of the named single-valued string
// argument, or its declared default. urfave/cli v3.0.0-beta1 stores parsed
// argument values on the Argument itself and has no Command.StringArg lookup.
func stringArg(cmd *cli.Command, name string) string {
	for _, arg := range cmd.Arguments {
		if sa, ok := arg.(*cli.StringArg); ok && sa.Name == name {
			if sa.Values != nil && len(*sa.Values) > 0 {
				return (*sa.Values)[0]
			}
			return sa.Value
		}
	}
	return ""
}

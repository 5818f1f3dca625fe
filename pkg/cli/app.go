package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fluxorio/todos/pkg/config"
	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/repository"
	"github.com/fluxorio/todos/pkg/todo"
	"github.com/spf13/pflag"
)

// OpenFunc opens the storage backend. repository.Open in production.
type OpenFunc func(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*repository.Backend, error)

// App holds the state shared by every command of one invocation.
type App struct {
	Out io.Writer
	Err io.Writer

	Open OpenFunc

	ctx        context.Context
	configPath string
	filePath   string
	backend    *repository.Backend
	todos      *todo.UseCases
	logger     *slog.Logger
}

// NewApp returns an App writing command output to out and diagnostics to errOut.
func NewApp(out, errOut io.Writer) *App {
	return &App{
		Out:  out,
		Err:  errOut,
		Open: repository.Open,
		ctx:  context.Background(),
	}
}

// Run executes args (without the program name) and releases the backend.
func (a *App) Run(ctx context.Context, args []string) error {
	a.ctx = ctx
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(a.Err, "error: close storage: %v\n", err)
		}
	}()
	return a.Root().Execute(args)
}

// Close releases the backend if one was opened.
func (a *App) Close() error {
	if a.backend == nil {
		return nil
	}
	err := a.backend.Close()
	a.backend = nil
	a.todos = nil
	return err
}

// Root builds the command tree.
func (a *App) Root() *Command {
	return &Command{
		Name:        "todo",
		Summary:     "A simple todo CLI application",
		Description: "A simple todo CLI application.\n\nTodos are stored in todos.json in the current directory unless\n--file, --config or TODO_STORAGE_* variables say otherwise.",
		Output:      a.Err,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("todo", pflag.ContinueOnError)
			fs.StringVar(&a.configPath, "config", os.Getenv("TODO_CONFIG"), "config file (YAML or JSON)")
			fs.StringVar(&a.filePath, "file", "", "JSON file to store todos in; selects the file backend")
			return fs
		},
		Subcommands: []*Command{
			a.addCommand(),
			a.listCommand(),
			a.getCommand(),
			a.updateCommand(),
			a.deleteCommand(),
			a.configCommand(),
		},
	}
}

func (a *App) loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if a.filePath != "" {
		cfg.Storage.Backend = config.BackendFile
		cfg.Storage.Path = a.filePath
	}
	return cfg, nil
}

// useCases opens the configured backend on first use.
func (a *App) useCases() (*todo.UseCases, error) {
	if a.todos != nil {
		return a.todos, nil
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	a.logger = core.NewLoggerTo(a.Err, cfg.Log)

	backend, err := a.Open(a.ctx, cfg.Storage, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.backend = backend
	a.todos = todo.NewUseCases(backend)
	return a.todos, nil
}

// fail prints a styled error line and returns an ExitError.
func (a *App) fail(format string, args ...any) error {
	s := newStyles(a.Err)
	fmt.Fprintf(a.Err, "%s %s\n", s.failure.Render("Error:"), fmt.Sprintf(format, args...))
	return &ExitError{Code: 1}
}

// notFound reports id as missing, or returns err when it is not a not-found.
func (a *App) notFound(id string, err error) error {
	if err != nil && !errors.Is(err, todo.ErrNotFound) {
		return err
	}
	return a.fail("Todo with ID %s not found.", newStyles(a.Err).id.Render(id))
}

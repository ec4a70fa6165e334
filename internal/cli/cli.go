// Package cli wires configuration, storage and the task session behind the
// taskbook command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"taskbook/internal/config"
	"taskbook/internal/logging"
	"taskbook/internal/render"
	"taskbook/internal/storage"
	"taskbook/internal/tasks"
	"taskbook/internal/ui"
)

// runMenu starts the interactive menu. Tests replace it.
var runMenu = ui.Run

type app struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string

	cfg       config.Config
	logger    *log.Logger
	logCloser io.Closer
	store     *storage.Store
	load      storage.LoadResult
	session   *tasks.Session
	renderer  *render.Renderer
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetIn(stdin)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:           "taskbook",
		Short:         "Keep a personal list of tasks with deadlines",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(true); err != nil {
				return err
			}
			defer a.close()
			return runMenu(a.session, a.renderer, a.load)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.ResolveConfigPath()+")")

	cmd.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newDoneCmd(a),
		newRmCmd(a),
		newExportCmd(a),
	)
	return cmd
}

// open loads config, sets up logging and loads the stored tasks. The menu
// never logs to the terminal it draws on.
func (a *app) open(interactive bool) error {
	path := a.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Prefix: "taskbook"}
	switch {
	case cfg.Log.Path != "":
		logger, closer, err := logging.OpenFile(opts, cfg.Log.Path)
		if err != nil {
			return err
		}
		a.logger, a.logCloser = logger, closer
	case interactive:
		a.logger = logging.Discard()
	default:
		a.logger = logging.New(opts, a.stderr)
	}

	store, err := storage.Open(storage.Options{
		Backend:           cfg.Storage.Backend,
		Path:              cfg.Storage.Path,
		QuarantineCorrupt: cfg.Storage.QuarantineCorrupt,
		Logger:            a.logger,
	})
	if err != nil {
		a.closeLog()
		return fmt.Errorf("open task store: %w", err)
	}
	a.store = store
	a.load = store.Load()
	a.session = tasks.NewSession(a.load.Tasks, store, a.logger)
	a.renderer = render.New(render.Columns{
		Subject:     cfg.Columns.Subject,
		Description: cfg.Columns.Description,
		Deadline:    cfg.Columns.Deadline,
	})

	if !interactive && a.load.State == storage.StateCorrupt {
		fmt.Fprintf(a.stderr, "warning: %v; starting with an empty list\n", a.load.Err)
	}
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("close task store", "err", err)
		}
	}
	a.closeLog()
}

func (a *app) closeLog() {
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}

// Main is the entry point used by cmd/taskbook.
func Main() {
	os.Exit(Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

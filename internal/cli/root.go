// Package cli provides the command-line interface for mentormatch.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/mentormatch/internal/adapters/repository"
	"github.com/okian/mentormatch/internal/config"
	"github.com/okian/mentormatch/pkg/logger"
)

// Version is set at build time.
var Version = "0.1.0" //nolint:gochecknoglobals // set via -ldflags

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configFile string
	logLevel   string

	cfg *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "mentormatch",
		Short: "Mentor/mentee compatibility scoring and ranking",
		Long: `mentormatch scores mentor/mentee pairs across skills, availability,
style, goals, industry and experience, and ranks candidates for a user.

Configuration is layered: defaults, then the YAML file given by --config or
MENTORMATCH_CONFIG, then MENTORMATCH_* environment variables.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file (defaults to $MENTORMATCH_CONFIG)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newRankCmd(opts))
	root.AddCommand(newFixturesCmd(opts))
	root.AddCommand(newLoadgenCmd(opts))
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// setup loads configuration and initializes logging. Logs go to stderr so
// commands that print JSON keep stdout clean.
func (o *globalOptions) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFile(o.configFile)
	} else {
		cfg, err = config.Load(cmd.Context())
	}
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	if err := logger.Init(
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithFormat(cfg.LogFormat),
		logger.WithFile(cfg.LogFile),
		logger.WithLevel(cfg.LogLevel),
	); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	o.cfg = cfg
	return nil
}

// openStore returns the configured store. Postgres is migrated on open.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.Storage != config.StoragePostgres {
		return repository.NewMemoryStore(), nil
	}
	pg, err := repository.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}
	return pg, nil
}

// seedStore loads a fixtures file into store. An empty path is a no-op.
func seedStore(ctx context.Context, store repository.Store, path string) (repository.Fixtures, error) {
	if path == "" {
		return repository.Fixtures{}, nil
	}
	f, err := repository.LoadFixtures(path)
	if err != nil {
		return f, err
	}
	if err := repository.Seed(ctx, store, f); err != nil {
		return f, err
	}
	return f, nil
}

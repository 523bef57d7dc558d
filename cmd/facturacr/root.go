package main

import (
	"errors"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/avillegas/facturacr/sequence"
)

// config is loaded from the environment, optionally via a .env file.
type config struct {
	SQLitePath  string `env:"FACTURACR_SQLITE" envDefault:"facturacr.db"`
	PostgresDSN string `env:"FACTURACR_POSTGRES_DSN"`
	Environment string `env:"FACTURACR_ENV" envDefault:"test"`
	Terminal    string `env:"FACTURACR_TERMINAL" envDefault:"01"`
	Branch      string `env:"FACTURACR_BRANCH" envDefault:"001"`
}

type rootOpts struct {
	verbose bool
	cfg     config
	log     zerolog.Logger
}

func root() *rootOpts {
	return &rootOpts{}
}

func (o *rootOpts) cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "facturacr",
		Short:             "Generate Costa Rican electronic documents",
		SilenceUsage:      true,
		PersistentPreRunE: o.prerun,
	}
	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(generate(o).cmd())
	cmd.AddCommand(inspect(o).cmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func (o *rootOpts) prerun(*cobra.Command, []string) error {
	// A missing .env file is fine; the environment may be set
	// directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := env.Parse(&o.cfg); err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if o.verbose {
		level = zerolog.DebugLevel
	}
	o.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

func (o *rootOpts) environment() (sequence.Environment, error) {
	e := sequence.Environment(o.cfg.Environment)
	if !e.Valid() {
		return "", errors.New("FACTURACR_ENV must be test or production")
	}
	return e, nil
}

// openStore prefers Postgres when a DSN is configured, falling back to
// the local SQLite file.
func (o *rootOpts) openStore(env sequence.Environment) (sequence.Store, error) {
	if o.cfg.PostgresDSN != "" {
		o.log.Debug().Msg("using postgres sequence store")
		return sequence.OpenPostgres(o.cfg.PostgresDSN, env)
	}
	o.log.Debug().Str("path", o.cfg.SQLitePath).Msg("using sqlite sequence store")
	return sequence.OpenSQLite(o.cfg.SQLitePath, env)
}

func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(args[0])
}

func openOutput(cmd *cobra.Command, args []string) (io.WriteCloser, error) {
	if len(args) < 2 || args[1] == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(args[1])
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

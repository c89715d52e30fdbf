package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// migrator is the part of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Force(v int) error
	Close() (error, error)
}

type openFunc func(path, dsn string) (migrator, error)

func openMigrator(path, dsn string) (migrator, error) {
	return migrate.New("file://"+path, "mysql://"+dsn)
}

func newRootCmd(defaultDSN string, open openFunc) *cobra.Command {
	var dsn, path string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or inspect the trip database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", defaultDSN, "MySQL DSN (defaults to MYSQL_DSN)")
	root.PersistentFlags().StringVar(&path, "path", "migrations", "path to the migrations directory")

	// with opens the migrator for one subcommand and always closes it.
	with := func(name string, run func(m migrator) error) error {
		m, err := open(path, dsn)
		if err != nil {
			return fmt.Errorf("open migrations: %w", err)
		}
		defer m.Close()
		log.Info().Str("path", path).Str("command", name).Msg("migrate starting")
		if err := run(m); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return with("up", func(m migrator) error {
					err := m.Up()
					if errors.Is(err, migrate.ErrNoChange) {
						log.Info().Msg("database is up to date")
						return nil
					}
					if err == nil {
						log.Info().Msg("migration completed")
					}
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every applied migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return with("down", func(m migrator) error {
					if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return err
					}
					log.Info().Msg("migration completed")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return with("version", func(m migrator) error {
					v, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						log.Info().Msg("no migration applied yet")
						return nil
					}
					if err != nil {
						return err
					}
					log.Info().Uint("version", v).Bool("dirty", dirty).Msg("current version")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("force: version must be a number, got %q", args[0])
				}
				return with("force", func(m migrator) error { return m.Force(v) })
			},
		},
	)
	return root
}

package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter/postgresengine"
	"github.com/AntonStoeckl/conditional-filter-go/config"
)

// sourceOpener connects the attribute source used by the search command.
type sourceOpener func(
	ctx context.Context,
	cfg config.Config,
	options ...postgresengine.Option,
) (conditionalfilter.AttributeSource, func(), error)

type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath  string
	catalogPath string
	logLevel    string

	cfg        config.Config
	catalog    *conditionalfilter.Catalog
	logger     *slog.Logger
	openSource sourceOpener
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:     stdout,
		stderr:     stderr,
		openSource: openAttributeStore,
	}
}

func openAttributeStore(
	ctx context.Context,
	cfg config.Config,
	options ...postgresengine.Option,
) (conditionalfilter.AttributeSource, func(), error) {

	store, closeStore, err := config.OpenAttributeStore(ctx, cfg, options...)
	if err != nil {
		return nil, nil, err
	}

	return store, closeStore, nil
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "filterctl",
		Short:         "Inspect, render and search conditional filter rows",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&a.catalogPath, "catalog", "", "path to a YAML catalog replacing the built-in one")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newOptionsCommand(a),
		newSQLCommand(a),
		newSearchCommand(a),
	)

	return root
}

// setup loads the configuration, the logger and the catalog. Flags win over the configuration file.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	if a.catalogPath != "" {
		cfg.CatalogFile = a.catalogPath
	}

	if err = cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = config.NewLogger(cfg.Log, a.stderr)
	a.catalog = conditionalfilter.DefaultCatalog()

	if cfg.CatalogFile != "" {
		if a.catalog, err = conditionalfilter.LoadCatalogFile(cfg.CatalogFile); err != nil {
			return err
		}

		a.logger.Debug("catalog loaded", "path", cfg.CatalogFile, "static_fields", len(a.catalog.StaticSlugs()))
	}

	return nil
}

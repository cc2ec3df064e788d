package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter/postgresengine"
	"github.com/AntonStoeckl/conditional-filter-go/config"
)

func newSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>...",
		Short: "Search dynamic attributes, one concurrent search per query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd.Context(), args)
		},
	}
}

func (a *app) runSearch(ctx context.Context, queries []string) error {
	storeOptions := []postgresengine.Option{postgresengine.WithLogger(a.logger)}
	searchOptions := []conditionalfilter.SearchOption{conditionalfilter.WithSearchLogger(a.logger)}

	if a.cfg.Observability.Enabled {
		providers, err := config.NewObservabilityProviders(ctx, a.cfg.Observability)
		if err != nil {
			return err
		}

		defer func() {
			if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
				a.logger.Warn("observability shutdown failed", "error", shutdownErr.Error())
			}
		}()

		storeOptions = providers.StoreOptions(a.logger.Handler())
		searchOptions = append(searchOptions, conditionalfilter.WithSearchMetrics(providers.MetricsCollector()))
	}

	source, closeSource, err := a.openSource(ctx, a.cfg, storeOptions...)
	if err != nil {
		return err
	}
	defer closeSource()

	search, err := conditionalfilter.NewAttributeSearch(source, searchOptions...)
	if err != nil {
		return err
	}

	elements := make([]*conditionalfilter.FilterElement, len(queries))
	group, groupCtx := errgroup.WithContext(ctx)

	for i, query := range queries {
		elements[i] = a.catalog.CreateEmpty()

		group.Go(func() error {
			searchCtx, cancel := context.WithTimeout(groupCtx, a.cfg.Attributes.SearchTimeout)
			defer cancel()

			_, searchErr := search.Search(searchCtx, elements[i], query)

			return searchErr
		})
	}

	if err = group.Wait(); err != nil {
		return err
	}

	return a.printAttributes(queries, elements)
}

func (a *app) printAttributes(queries []string, elements []*conditionalfilter.FilterElement) error {
	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "QUERY\tSLUG\tNAME\tINPUT TYPE\tENTITY TYPE")

	for i, element := range elements {
		for _, attribute := range element.AvailableAttributesList {
			entityType := "-"
			if attribute.EntityType != nil {
				entityType = *attribute.EntityType
			}

			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				queries[i], attribute.Slug, attribute.Label, attribute.Type, entityType)
		}
	}

	return w.Flush()
}

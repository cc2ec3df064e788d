package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
	"github.com/AntonStoeckl/conditional-filter-go/config"
)

const (
	formatSQL  = "sql"
	formatJSON = "json"
)

type sqlFlags struct {
	rows       []string
	constraint string
	format     string
	submission string
}

func newSQLCommand(a *app) *cobra.Command {
	var flags sqlFlags

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Render filter rows as SQL or as a JSON submission",
		Example: "  filterctl sql --row price:between:10,20 --constraint default-channel\n" +
			"  filterctl sql --row color@DROPDOWN:in:red,blue --format json",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runSQL(flags)
		},
	}

	cmd.Flags().StringArrayVar(&flags.rows, "row", nil, "filter row as kind:operator:value[,value]; attributes as slug@INPUT_TYPE")
	cmd.Flags().StringVar(&flags.constraint, "constraint", "", "qualifier for constrained rows, e.g. a channel slug")
	cmd.Flags().StringVar(&flags.format, "format", formatSQL, "output format: sql or json")
	cmd.Flags().StringVar(&flags.submission, "submission", "", "JSON submission file whose rows are prepended")

	return cmd
}

func (a *app) runSQL(flags sqlFlags) error {
	if flags.format != formatSQL && flags.format != formatJSON {
		return fmt.Errorf("unknown format %q", flags.format)
	}

	rows, err := buildRows(a.catalog, flags.rows, flags.constraint)
	if err != nil {
		return err
	}

	elements, err := a.readSubmission(flags.submission)
	if err != nil {
		return err
	}

	for _, row := range rows.Rows() {
		elements = append(elements, row.Element)
	}

	if missing := rows.MissingConstraints(); len(missing) > 0 {
		a.logger.Warn("rows depend on a constraint that is not set, pass --constraint", "missing", missing)
	}

	completed := make([]*conditionalfilter.FilterElement, 0, len(elements))
	for _, element := range elements {
		if !element.IsComplete() {
			a.logger.Warn("skipping incomplete row", "operand", element.Value.Value, "kind", element.Value.Type)
			continue
		}

		completed = append(completed, element)
	}

	if flags.format == formatJSON {
		data, err := conditionalfilter.EncodeSubmission(completed)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(a.stdout, string(data))

		return err
	}

	builder, err := config.NewQueryBuilder(a.cfg.Query)
	if err != nil {
		return err
	}

	query, err := builder.Build(completed)
	if err != nil {
		return err
	}

	a.logger.Debug("query built", "rows", len(completed))
	_, err = fmt.Fprintln(a.stdout, query)

	return err
}

func (a *app) readSubmission(path string) ([]*conditionalfilter.FilterElement, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return conditionalfilter.DecodeSubmission(data, a.catalog)
}

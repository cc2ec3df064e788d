package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
)

func newOptionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "options <kind>",
		Short: "List the operators offered for an operand kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runOptions(args[0])
		},
	}
}

func (a *app) runOptions(kind string) error {
	options := a.catalog.OptionsFor(kind)
	if len(options) == 0 {
		return fmt.Errorf("%w: %s", conditionalfilter.ErrUnknownOperandKind, kind)
	}

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LABEL\tWIDGET\tVALUE")

	for _, option := range options {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", option.Label, option.Type, option.Value)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if constraint := a.catalog.ConstraintFor(kind); constraint != nil {
		_, _ = fmt.Fprintf(a.stdout, "\nrequired by: %s\n", strings.Join(constraint.DependsOn, ", "))
	}

	return nil
}

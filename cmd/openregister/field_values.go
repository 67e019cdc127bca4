package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// defaultField is the field printed when no subcommand is given.
const defaultField = "organisation"

func (a *app) fieldValuesCommand() *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "field-values",
		Short: "Print a field's resolved value for every record that declares it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printFieldValues(cmd.Context(), field)
		},
	}
	cmd.Flags().StringVarP(&field, "field", "f", defaultField, "field name to collect")
	return cmd
}

// printFieldValues prints "<register: name> value" per record, with None
// for blank values.
func (a *app) printFieldValues(ctx context.Context, field string) error {
	matches, err := a.catalog.CollectFieldValues(ctx, field, a.cfg.Phase)
	if err != nil {
		return err
	}
	for _, m := range matches {
		value := m.Value
		if !m.OK {
			value = "None"
		}
		if _, err := fmt.Fprintln(a.out, m.Register, value); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-openregister"
)

func (a *app) diffCommand() *cobra.Command {
	var from, to string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "diff <register>",
		Short: "Compare a register's records between two phases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			diff, err := a.catalog.DiffPhases(cmd.Context(), args[0], from, to)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(diff)
			}
			return writeDiff(a, args[0], from, to, diff)
		},
	}
	cmd.Flags().StringVar(&from, "from", openregister.PhaseAlpha, "phase to compare from")
	cmd.Flags().StringVar(&to, "to", openregister.PhaseBeta, "phase to compare to")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the diff as JSON")
	return cmd
}

func writeDiff(a *app, name, from, to string, diff *openregister.RecordsDiff) error {
	if diff.IsEmpty() {
		_, err := fmt.Fprintf(a.out, "%s: no differences between %s and %s\n", name, from, to)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d added, %d removed, %d changed (%s -> %s)\n",
		name, len(diff.Added), len(diff.Removed), len(diff.Changed), from, to)
	for _, id := range diff.Added {
		fmt.Fprintf(&b, "+ %s\n", id)
	}
	for _, id := range diff.Removed {
		fmt.Fprintf(&b, "- %s\n", id)
	}
	for _, c := range diff.Changed {
		fmt.Fprintf(&b, "~ %s (%s)\n", c.ID, strings.Join(c.Fields, ", "))
	}
	_, err := io.WriteString(a.out, b.String())
	return err
}

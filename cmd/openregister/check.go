package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-openregister"
)

func (a *app) checkCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report registers whose hosts cannot be reached",
		Long: `Fetch every register listed by the phase's register register and print
"BROKEN: name" for each one that cannot be reached.

With --all, every phase is checked in turn.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			phases := []string{a.cfg.Phase}
			if all {
				phases = slices.Clone(openregister.Phases)
			}

			total := 0
			for _, phase := range phases {
				if all {
					fmt.Fprintln(a.out, phase)
				}
				broken, err := a.catalog.CheckRegistersExist(cmd.Context(), phase, a.out)
				if err != nil {
					return fmt.Errorf("checking %s: %w", phase, err)
				}
				total += len(broken)
			}
			a.log.Info("check complete", "phases", len(phases), "broken", total)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "check discovery, alpha and beta")
	return cmd
}

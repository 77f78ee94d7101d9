package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magnusua/WhisperFastGUI/internal/diagnostics"
)

func newDiagCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "diag",
		Short: "Check the host environment and required tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.configStore()
			if err != nil {
				return err
			}
			report := diagnostics.Run(cmd.Context(), store.StateDir(), "")

			rows := make([][]string, 0, len(report.Checks)+len(report.Tools))
			for _, check := range report.Checks {
				rows = append(rows, []string{statusMark(check.Passed), check.Name, check.Detail})
			}
			for _, tool := range report.Tools {
				detail := tool.Detail
				if !tool.Available && tool.Optional {
					detail = "optional; " + detail
				}
				rows = append(rows, []string{statusMark(tool.Available || tool.Optional), tool.Name, detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable(
					[]string{"", "Check", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))

			if !report.Healthy() {
				return fmt.Errorf("environment checks failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All checks passed")
			return nil
		},
	}
}

func statusMark(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAIL"
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/whiteboard-go/engine/geometry"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var write string

	cmd := &cobra.Command{
		Use:   "resolve <plan>",
		Short: "Resolve relative points and report geometry fallbacks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := ctx.loadPlan(cmd, joinArgs(args))
			if err != nil {
				return err
			}
			resolved, warnings := geometry.Resolve(p)

			out := cmd.OutOrStdout()
			if len(warnings) == 0 {
				fmt.Fprintf(out, "All points resolved (%d steps)\n", resolved.Len())
			} else {
				rows := make([][]string, 0, len(warnings))
				for _, w := range warnings {
					rows = append(rows, []string{strconv.Itoa(w.StepIndex), w.ItemID, w.Kind.String(), w.Message})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Step", "Item", "Kind", "Detail"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintf(out, "%d fallback(s) applied\n", len(warnings))
			}

			if write != "" {
				if err := writePlan(write, resolved); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote resolved plan to %s\n", write)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&write, "write", "w", "", "Write the resolved plan to this file")
	return cmd
}

func writePlan(path string, p *plan.WhiteboardPlan) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := plan.Encode(f, p); err != nil {
		f.Close()
		return fmt.Errorf("encode plan: %w", err)
	}
	return f.Close()
}

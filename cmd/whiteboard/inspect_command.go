package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
	"github.com/Carmen-Shannon/whiteboard-go/engine/playback"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <plan>",
		Short: "Summarize the steps of a plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, lib, err := ctx.loadPlan(cmd, joinArgs(args))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path, ok := lib.PathOf(p); ok {
				fmt.Fprintf(out, "Plan: %s\n", path)
			}
			if p.Summary != "" {
				fmt.Fprintf(out, "Summary: %s\n", truncate(p.Summary, 100))
			}

			var total time.Duration
			rows := make([][]string, 0, p.Len())
			for i := range p.Steps {
				step := &p.Steps[i]
				d := playback.HeuristicDuration(step)
				total += d
				rows = append(rows, []string{
					strconv.Itoa(i),
					formatOrigin(step),
					strconv.Itoa(len(step.DrawingCommands)) + "+" + strconv.Itoa(len(step.Annotations)),
					strconv.Itoa(step.WordCount()),
					d.Round(100 * time.Millisecond).String(),
					diagramLabel(p, i),
					flags(step),
					truncate(step.Explanation, 48),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Step", "Origin", "Items", "Words", "Est.", "Diagram", "Flags", "Explanation"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d steps, about %s without narration\n", p.Len(), total.Round(time.Second))
			return nil
		},
	}
}

func formatOrigin(step *plan.Step) string {
	return fmt.Sprintf("(%g, %g)", step.Origin.X, step.Origin.Y)
}

// diagramLabel names the step that starts the diagram step i belongs to.
func diagramLabel(p *plan.WhiteboardPlan, i int) string {
	start := p.DiagramStart(i)
	if start == i {
		return "new"
	}
	return "↳ " + strconv.Itoa(start)
}

func flags(step *plan.Step) string {
	var parts []string
	if n := len(step.HighlightIDs); n > 0 {
		parts = append(parts, "highlight:"+strconv.Itoa(n))
	}
	if step.RetainedLabelIDs != nil {
		parts = append(parts, "retain:"+strconv.Itoa(len(step.RetainedLabelIDs)))
	}
	if step.HasPhysics() {
		parts = append(parts, "physics")
	}
	for _, item := range step.Items() {
		if item.Common().Animate != nil {
			parts = append(parts, "motion")
			break
		}
	}
	return strings.Join(parts, " ")
}

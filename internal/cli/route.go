package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lanechart/pkg/cache"
	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
	"github.com/matzehuels/lanechart/pkg/geom"
	"github.com/matzehuels/lanechart/pkg/linklayer"
	"github.com/matzehuels/lanechart/pkg/pipeline"
)

// Route status labels.
const (
	statusRouted   = "routed"
	statusFallback = "fallback"
	statusSkipped  = "skipped"
)

// linkRow is one link with its routing outcome.
type linkRow struct {
	ID       string       `json:"id"`
	From     string       `json:"from"`
	To       string       `json:"to"`
	Status   string       `json:"status"`
	Selected bool         `json:"selected,omitempty"`
	Length   float64      `json:"length,omitempty"`
	Points   []geom.Point `json:"points,omitempty"`
	Path     string       `json:"path,omitempty"`
}

// bends is the number of corners on the route.
func (r linkRow) bends() int {
	if len(r.Points) < 3 {
		return 0
	}
	return len(r.Points) - 2
}

// linkRows pairs every link of c with its route, in document order.
func linkRows(c *chart.Chart, routes []linklayer.Routed) []linkRow {
	byID := make(map[string]linklayer.Routed, len(routes))
	for _, r := range routes {
		byID[r.Link.ID] = r
	}
	rows := make([]linkRow, 0, len(c.Links))
	for _, l := range c.Links {
		row := linkRow{ID: l.ID, From: l.FromID, To: l.ToID, Status: statusSkipped}
		if r, ok := byID[l.ID]; ok {
			row.Status = statusRouted
			if r.Fallback {
				row.Status = statusFallback
			}
			row.Selected = r.Selected
			row.Points = r.Points
			row.Path = r.Path
			row.Length = geom.PathLength(r.Points)
		}
		rows = append(rows, row)
	}
	return rows
}

// filterRows keeps the rows named by ids, in the order given.
func filterRows(rows []linkRow, ids []string) ([]linkRow, error) {
	if len(ids) == 0 {
		return rows, nil
	}
	byID := make(map[string]linkRow, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]linkRow, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "link %q not in chart", id)
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *CLI) routeCommand() *cobra.Command {
	var (
		f      chartFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "route [file] [link-id...]",
		Short: "Print the routed path of each link",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.Render.PipelineOptions()
			if err := f.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runRoute(cmd.Context(), args[0], args[1:], asJSON, opts)
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print routes as JSON")
	return cmd
}

// planFile loads input and routes its links without rendering.
func (c *CLI) planFile(ctx context.Context, input string, opts pipeline.Options) (*chart.Chart, []linkRow, error) {
	ch, err := c.loadChart(ctx, input, false)
	if err != nil {
		return nil, nil, err
	}
	// Routing only exists on the timeline view.
	opts.VizType = pipeline.VizTypeChart
	opts.Formats = nil

	runner := pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger)
	prog := newProgress(c.Logger)
	_, routes, err := runner.Plan(ctx, ch, opts)
	if err != nil {
		return nil, nil, err
	}
	prog.done(fmt.Sprintf("Routed %d of %d links", len(routes), len(ch.Links)))
	return ch, linkRows(ch, routes), nil
}

func (c *CLI) runRoute(ctx context.Context, input string, ids []string, asJSON bool, opts pipeline.Options) error {
	ch, rows, err := c.planFile(ctx, input, opts)
	if err != nil {
		return err
	}
	if rows, err = filterRows(rows, ids); err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	}

	if len(rows) == 0 {
		printInfo("%s has no links", titleOf(ch, input))
		return nil
	}
	printInfo("%s: %d link(s)", titleOf(ch, input), len(rows))
	fmt.Fprintln(stdout, routeTable(rows, -1))

	skipped := 0
	for _, r := range rows {
		if r.Status == statusSkipped {
			skipped++
		}
	}
	if skipped > 0 {
		printWarning("%d link(s) skipped: endpoints coincide or an item is missing", skipped)
	}
	return nil
}

// routeTable renders rows as a bordered table. The row at cursor, if any, is
// highlighted.
func routeTable(rows []linkRow, cursor int) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	data := make([][]string, len(rows))
	for i, r := range rows {
		length := "-"
		if r.Status != statusSkipped {
			length = fmt.Sprintf("%.0f", r.Length)
		}
		data[i] = []string{r.ID, r.From, r.To, r.Status, fmt.Sprint(r.bends()), length}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Link", "From", "To", "Status", "Bends", "Length").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(rows) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == cursor {
				base = base.Bold(true)
			}
			if col != 3 {
				if row == cursor {
					return base.Foreground(colorCyan)
				}
				return base
			}
			return base.Inherit(statusStyle(rows[row].Status))
		})
	return t.Render()
}

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lanechart/pkg/pipeline"
)

func (c *CLI) inspectCommand() *cobra.Command {
	var (
		f      chartFlags
		plain  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Browse a chart's links and their routes",
		Long: `Inspect routes every link and opens an interactive list. Press s on a
link to render the chart with that link highlighted (use -o to pick the file).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.Render.PipelineOptions()
			if err := f.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runInspect(cmd.Context(), args[0], output, plain, opts)
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "print the link table without the interactive view")
	cmd.Flags().StringVarP(&output, "output", "o", "", "SVG written for the selected link (default: <input>.svg)")
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input, output string, plain bool, opts pipeline.Options) error {
	ch, rows, err := c.planFile(ctx, input, opts)
	if err != nil {
		return err
	}
	title := titleOf(ch, input)

	if plain {
		printInfo("%s: %d link(s)", title, len(rows))
		fmt.Fprintln(stdout, routeTable(rows, -1))
		return nil
	}

	final, err := tea.NewProgram(NewLinkListModel(title, rows), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	m, ok := final.(LinkListModel)
	if !ok || m.Selected == nil {
		return nil
	}

	opts.Selected = m.Selected.ID
	opts.VizType = pipeline.VizTypeChart
	opts.Formats = []string{pipeline.FormatSVG}
	return c.runRender(ctx, input, output, false, opts)
}

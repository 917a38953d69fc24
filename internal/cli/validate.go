package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
	chartio "github.com/matzehuels/lanechart/pkg/io"
)

func (c *CLI) validateCommand() *cobra.Command {
	var schema bool

	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check chart documents for schema and reference errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			if schema {
				_, err := stdout.Write(chart.Schema())
				return err
			}
			if len(args) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "no files given")
			}
			return c.runValidate(cmd.Context(), args)
		},
	}

	cmd.Flags().BoolVar(&schema, "schema", false, "print the JSON schema and exit")
	return cmd
}

// runValidate checks every file and reports all failures before returning.
func (c *CLI) runValidate(ctx context.Context, paths []string) error {
	failed := 0
	for _, path := range paths {
		ch, err := c.loadChart(ctx, path, true)
		if err != nil {
			failed++
			printError("%s", path)
			printDetail("%v", err)
			c.Logger.Debug("validation failed", "path", path, "err", err)
			continue
		}

		start, end := ch.Span()
		printSuccess("%s", path)
		printDetail("%d lanes · %d items · %d links · span %g–%g", len(ch.Swimlanes), ch.ItemCount(), len(ch.Links), start, end)
		for _, l := range ch.StaleLinks() {
			printWarning("link %s (%s %s %s) is stale and will not be drawn", l.ID, l.FromID, iconArrow, l.ToID)
		}
	}
	if failed > 0 {
		return errors.New(errors.ErrCodeInvalidDocument, "%d of %d file(s) invalid", failed, len(paths))
	}
	return nil
}

func (c *CLI) convertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert a chart between JSON and YAML",
		Long: `Convert reads a chart, normalizes it (filling in generated ids and
swimlane references) and writes it in the format implied by the output
extension. Use "-" as output to print YAML to stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := c.loadChart(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			if args[1] == "-" {
				return chartio.WriteYAML(ch, stdout)
			}
			if err := chartio.Export(ch, args[1]); err != nil {
				return err
			}
			printSuccess("Converted %s", args[0])
			printFile(args[1])
			return nil
		},
	}
}

func (c *CLI) exampleCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Write a sample chart to start from",
		RunE: func(cmd *cobra.Command, args []string) error {
			ch := sampleChart()
			if output == "" {
				return chartio.WriteYAML(ch, stdout)
			}
			if err := chartio.Export(ch, output); err != nil {
				return err
			}
			printSuccess("Wrote sample chart")
			printFile(output)
			printNextStep("Render it", fmt.Sprintf("%s render %s", appName, output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json or .yaml); default stdout")
	return cmd
}

// sampleChart is a small release plan with links across lanes.
func sampleChart() *chart.Chart {
	b := chart.NewBuilder("Release plan").Unit("day")
	dev := b.Lane("Development")
	qa := b.Lane("QA")
	ops := b.Lane("Operations")

	api := b.Task(dev, "API", 0, 5)
	ui := b.Task(dev, "UI", 3, 6)
	tests := b.Task(qa, "Regression", 9, 3)
	freeze := b.State(qa, "Code freeze", 8, 6)
	deploy := b.Task(ops, "Deploy", 13, 1)

	b.Link(api, ui)
	b.Link(ui, tests)
	b.LinkHandles(freeze, chart.HandleStart, tests, chart.HandleStart)
	b.Link(tests, deploy)
	b.Flag("Launch", 14)
	return b.Chart()
}

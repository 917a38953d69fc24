package layout_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/layout"
	"github.com/matzehuels/lanechart/pkg/linklayer"
)

func Example() {
	b := chart.NewBuilder("plan")
	dev := b.Lane("Dev")
	api := b.Task(dev, "API", 0, 5)
	ui := b.Task(dev, "UI", 10, 5)
	b.Link(api, ui)
	c := b.Chart()

	l := layout.Build(c, layout.Options{Width: 400, LabelWidth: 84, PxPerUnit: 10}, layout.Viewport{})
	routed := linklayer.New(nil).Resolve(context.Background(), c.Links, l, l.Canvas, linklayer.Options{})

	fmt.Println(routed[0].Path)
	// Output: M 150 70 L 200 70
}

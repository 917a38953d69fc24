package chart

import (
	"reflect"
	"sync"
	"testing"
)

func sample() *Chart {
	return &Chart{
		Title: "Release",
		Swimlanes: []Swimlane{
			{ID: "dev", Name: "Development", Items: []Item{
				{ID: "api", Label: "API", Start: 0, Duration: 5},
				{ID: "ui", Label: "UI", Start: 5, Duration: 3},
			}},
			{ID: "ops", Name: "Operations", Items: []Item{
				{ID: "deploy", Label: "Deploy", Start: 8, Duration: 1},
			}},
		},
		Links: []Link{
			{ID: "l1", FromID: "api", ToID: "ui"},
			{ID: "l2", FromID: "ui", ToID: "deploy"},
		},
	}
}

func TestIDGen(t *testing.T) {
	g := NewIDGen()
	g.Reserve("item-2")
	g.Reserve("")

	got := []string{g.Next("item"), g.Next("item"), g.Next("link")}
	want := []string{"item-1", "item-3", "link-1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Next = %v, want %v", got, want)
	}
}

func TestIDGenConcurrent(t *testing.T) {
	g := NewIDGen()
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := g.Next("item")
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate id %s", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != 400 {
		t.Errorf("got %d ids, want 400", len(seen))
	}
}

func TestNormalize(t *testing.T) {
	c := &Chart{
		Swimlanes: []Swimlane{
			{Name: "A", Items: []Item{{Start: 0, Duration: 1}, {ID: "item-1", Start: 2, Duration: 1}}},
			{ID: "b", Name: "B", Items: []Item{{ID: "x", Kind: KindState, Start: 1, Duration: 2}}},
		},
		Links: []Link{{FromID: "item-1", ToID: "x"}},
		Flags: []Flag{{Label: "go-live", At: 3}},
	}
	c.Normalize(nil)

	if got := c.Swimlanes[0].ID; got != "lane-1" {
		t.Errorf("lane id = %q, want lane-1", got)
	}
	if got := c.Swimlanes[0].Items[0].ID; got != "item-2" {
		t.Errorf("generated item id = %q, want item-2 (item-1 is taken)", got)
	}
	if got := c.Swimlanes[0].Items[0].Kind; got != KindTask {
		t.Errorf("default kind = %q, want task", got)
	}
	if got := c.Swimlanes[1].Items[0].Kind; got != KindState {
		t.Errorf("explicit kind = %q, want state", got)
	}

	l := c.Links[0]
	if l.ID != "link-1" {
		t.Errorf("link id = %q, want link-1", l.ID)
	}
	if l.FromHandle != HandleFinish || l.ToHandle != HandleStart {
		t.Errorf("handles = %s/%s, want finish/start", l.FromHandle, l.ToHandle)
	}
	if l.FromSwimlaneID != "lane-1" || l.ToSwimlaneID != "b" {
		t.Errorf("swimlanes = %s/%s, want lane-1/b", l.FromSwimlaneID, l.ToSwimlaneID)
	}
	if c.Flags[0].ID != "flag-1" {
		t.Errorf("flag id = %q, want flag-1", c.Flags[0].ID)
	}
	if err := Validate(c); err != nil {
		t.Errorf("Validate after Normalize: %v", err)
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name       string
		chart      *Chart
		start, end float64
	}{
		{"empty", &Chart{}, 0, 1},
		{"items", sample(), 0, 9},
		{"flag extends", &Chart{
			Swimlanes: []Swimlane{{ID: "a", Items: []Item{{ID: "i", Start: 2, Duration: 2}}}},
			Flags:     []Flag{{ID: "f", At: 10}},
		}, 2, 10},
		{"zero width", &Chart{
			Swimlanes: []Swimlane{{ID: "a", Items: []Item{{ID: "i", Start: 4}}}},
		}, 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.chart.Span()
			if start != tt.start || end != tt.end {
				t.Errorf("Span() = [%g, %g], want [%g, %g]", start, end, tt.start, tt.end)
			}
		})
	}
}

func TestFindItem(t *testing.T) {
	c := sample()
	ref, ok := c.FindItem("deploy")
	if !ok {
		t.Fatal("deploy not found")
	}
	if ref.SwimlaneID != "ops" || ref.LaneIndex != 1 || ref.Item.Label != "Deploy" {
		t.Errorf("FindItem = %+v", ref)
	}
	if _, ok := c.FindItem("missing"); ok {
		t.Error("FindItem(missing) = true")
	}
	if got := c.LaneIndex("ops"); got != 1 {
		t.Errorf("LaneIndex(ops) = %d, want 1", got)
	}
	if got := c.LaneIndex("nope"); got != -1 {
		t.Errorf("LaneIndex(nope) = %d, want -1", got)
	}
	if got := c.ItemCount(); got != 3 {
		t.Errorf("ItemCount = %d, want 3", got)
	}
}

func TestStaleLinks(t *testing.T) {
	c := sample()
	c.Normalize(nil)
	if stale := c.StaleLinks(); len(stale) != 0 {
		t.Fatalf("fresh chart has stale links: %v", stale)
	}

	// Move "ui" from dev to ops; both links touching it go stale.
	ui := c.Swimlanes[0].Items[1]
	c.Swimlanes[0].Items = c.Swimlanes[0].Items[:1]
	c.Swimlanes[1].Items = append(c.Swimlanes[1].Items, ui)

	stale := c.StaleLinks()
	if len(stale) != 2 {
		t.Fatalf("stale = %d links, want 2", len(stale))
	}

	c.Links = append(c.Links, Link{ID: "gone", FromID: "api", ToID: "nope"})
	if got := len(c.StaleLinks()); got != 3 {
		t.Errorf("stale with missing item = %d, want 3", got)
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder("Plan").Unit("day")
	dev := b.Lane("Development")
	ops := b.Lane("Ops")
	api := b.Task(dev, "API", 0, 5)
	on := b.State(ops, "On call", 0, 10)
	b.Link(api, on)
	b.Flag("freeze", 7)

	if got := b.Task("nope", "lost", 0, 1); got != "" {
		t.Errorf("Task on unknown lane = %q, want empty", got)
	}

	c := b.Chart()
	if c.Title != "Plan" || c.Unit != "day" {
		t.Errorf("title/unit = %q/%q", c.Title, c.Unit)
	}
	if len(c.Swimlanes) != 2 || c.ItemCount() != 2 {
		t.Fatalf("lanes=%d items=%d, want 2/2", len(c.Swimlanes), c.ItemCount())
	}
	l := c.Links[0]
	if l.FromSwimlaneID != dev || l.ToSwimlaneID != ops {
		t.Errorf("link lanes = %s/%s, want %s/%s", l.FromSwimlaneID, l.ToSwimlaneID, dev, ops)
	}
	if err := Validate(c); err != nil {
		t.Errorf("Validate(built chart) = %v", err)
	}

	b.Task(dev, "More", 5, 1)
	if c.ItemCount() != 2 {
		t.Error("builder mutated a chart it already returned")
	}
}

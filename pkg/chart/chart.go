package chart

import "math"

// ItemKind distinguishes the two kinds of bars a swimlane can hold.
type ItemKind string

const (
	// KindTask is a unit of work with a start and a duration.
	KindTask ItemKind = "task"
	// KindState is a period in which a lane is in some state.
	KindState ItemKind = "state"
)

// Handle names the edge of a bar a link attaches to.
type Handle string

const (
	// HandleStart is the leading (left) edge of a bar.
	HandleStart Handle = "start"
	// HandleFinish is the trailing (right) edge of a bar.
	HandleFinish Handle = "finish"
)

// Chart is a timeline chart document.
type Chart struct {
	ID        string     `json:"id,omitempty" yaml:"id,omitempty" bson:"_id,omitempty"`
	Title     string     `json:"title,omitempty" yaml:"title,omitempty" bson:"title,omitempty"`
	Unit      string     `json:"unit,omitempty" yaml:"unit,omitempty" bson:"unit,omitempty"`
	Swimlanes []Swimlane `json:"swimlanes" yaml:"swimlanes" bson:"swimlanes"`
	Links     []Link     `json:"links,omitempty" yaml:"links,omitempty" bson:"links,omitempty"`
	Flags     []Flag     `json:"flags,omitempty" yaml:"flags,omitempty" bson:"flags,omitempty"`
}

// Swimlane is a horizontal row of items.
type Swimlane struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty" bson:"id"`
	Name  string `json:"name" yaml:"name" bson:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty"`
	Items []Item `json:"items,omitempty" yaml:"items,omitempty" bson:"items,omitempty"`
}

// Item is a bar on a swimlane. Start and Duration are measured in the
// chart's Unit.
type Item struct {
	ID       string   `json:"id,omitempty" yaml:"id,omitempty" bson:"id"`
	Kind     ItemKind `json:"kind,omitempty" yaml:"kind,omitempty" bson:"kind,omitempty"`
	Label    string   `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Start    float64  `json:"start" yaml:"start" bson:"start"`
	Duration float64  `json:"duration" yaml:"duration" bson:"duration"`
	Color    string   `json:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty"`
}

// End returns Start + Duration.
func (it Item) End() float64 { return it.Start + it.Duration }

// Link is a directed dependency between two items. The swimlane ids record
// which lane each endpoint lived in when the link was made; a link whose
// item has since moved to another lane is stale and is not drawn.
type Link struct {
	ID             string `json:"id,omitempty" yaml:"id,omitempty" bson:"id"`
	FromID         string `json:"from" yaml:"from" bson:"from"`
	ToID           string `json:"to" yaml:"to" bson:"to"`
	FromSwimlaneID string `json:"fromSwimlane,omitempty" yaml:"fromSwimlane,omitempty" bson:"fromSwimlane,omitempty"`
	ToSwimlaneID   string `json:"toSwimlane,omitempty" yaml:"toSwimlane,omitempty" bson:"toSwimlane,omitempty"`
	FromHandle     Handle `json:"fromHandle,omitempty" yaml:"fromHandle,omitempty" bson:"fromHandle,omitempty"`
	ToHandle       Handle `json:"toHandle,omitempty" yaml:"toHandle,omitempty" bson:"toHandle,omitempty"`
	Color          string `json:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty"`
	Label          string `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
}

// Handles returns the link's handles with finish-to-start defaults applied.
func (l Link) Handles() (from, to Handle) {
	from, to = l.FromHandle, l.ToHandle
	if from == "" {
		from = HandleFinish
	}
	if to == "" {
		to = HandleStart
	}
	return from, to
}

// Flag is a labelled vertical marker at a point in time.
type Flag struct {
	ID    string  `json:"id,omitempty" yaml:"id,omitempty" bson:"id"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	At    float64 `json:"at" yaml:"at" bson:"at"`
	Color string  `json:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty"`
}

// ItemRef locates an item inside a chart.
type ItemRef struct {
	Item       Item
	SwimlaneID string
	LaneIndex  int
}

// Index maps item ids to their location. Later duplicates win; Validate
// rejects duplicates.
func (c *Chart) Index() map[string]ItemRef {
	idx := make(map[string]ItemRef, c.ItemCount())
	for li, lane := range c.Swimlanes {
		for _, it := range lane.Items {
			idx[it.ID] = ItemRef{Item: it, SwimlaneID: lane.ID, LaneIndex: li}
		}
	}
	return idx
}

// FindItem returns the item with the given id and the lane holding it.
func (c *Chart) FindItem(id string) (ItemRef, bool) {
	for li, lane := range c.Swimlanes {
		for _, it := range lane.Items {
			if it.ID == id {
				return ItemRef{Item: it, SwimlaneID: lane.ID, LaneIndex: li}, true
			}
		}
	}
	return ItemRef{}, false
}

// LaneIndex returns the position of the swimlane with the given id, or -1.
func (c *Chart) LaneIndex(id string) int {
	for i, lane := range c.Swimlanes {
		if lane.ID == id {
			return i
		}
	}
	return -1
}

// ItemCount returns the number of items across all swimlanes.
func (c *Chart) ItemCount() int {
	n := 0
	for _, lane := range c.Swimlanes {
		n += len(lane.Items)
	}
	return n
}

// Span returns the earliest start and latest end over all items and flags.
// An empty chart spans [0, 1].
func (c *Chart) Span() (start, end float64) {
	start, end = math.Inf(1), math.Inf(-1)
	for _, lane := range c.Swimlanes {
		for _, it := range lane.Items {
			start = math.Min(start, it.Start)
			end = math.Max(end, it.End())
		}
	}
	for _, f := range c.Flags {
		start = math.Min(start, f.At)
		end = math.Max(end, f.At)
	}
	if math.IsInf(start, 1) {
		return 0, 1
	}
	if end <= start {
		end = start + 1
	}
	return start, end
}

// StaleLinks returns the links whose endpoints no longer sit in the
// swimlanes the link records, or whose items no longer exist.
func (c *Chart) StaleLinks() []Link {
	idx := c.Index()
	var out []Link
	for _, l := range c.Links {
		from, okFrom := idx[l.FromID]
		to, okTo := idx[l.ToID]
		switch {
		case !okFrom || !okTo:
			out = append(out, l)
		case l.FromSwimlaneID != "" && l.FromSwimlaneID != from.SwimlaneID:
			out = append(out, l)
		case l.ToSwimlaneID != "" && l.ToSwimlaneID != to.SwimlaneID:
			out = append(out, l)
		}
	}
	return out
}

// Normalize fills in missing ids from gen, defaults item kinds and link
// handles, and records each link's current swimlanes where they are unset.
// Existing ids are reserved first so generated ids never collide with them.
func (c *Chart) Normalize(gen *IDGen) {
	if gen == nil {
		gen = NewIDGen()
	}
	for _, lane := range c.Swimlanes {
		gen.Reserve(lane.ID)
		for _, it := range lane.Items {
			gen.Reserve(it.ID)
		}
	}
	for _, l := range c.Links {
		gen.Reserve(l.ID)
	}
	for _, f := range c.Flags {
		gen.Reserve(f.ID)
	}

	for li := range c.Swimlanes {
		lane := &c.Swimlanes[li]
		if lane.ID == "" {
			lane.ID = gen.Next("lane")
		}
		for ii := range lane.Items {
			it := &lane.Items[ii]
			if it.ID == "" {
				it.ID = gen.Next("item")
			}
			if it.Kind == "" {
				it.Kind = KindTask
			}
		}
	}

	idx := c.Index()
	for i := range c.Links {
		l := &c.Links[i]
		if l.ID == "" {
			l.ID = gen.Next("link")
		}
		l.FromHandle, l.ToHandle = l.Handles()
		if ref, ok := idx[l.FromID]; ok && l.FromSwimlaneID == "" {
			l.FromSwimlaneID = ref.SwimlaneID
		}
		if ref, ok := idx[l.ToID]; ok && l.ToSwimlaneID == "" {
			l.ToSwimlaneID = ref.SwimlaneID
		}
	}

	for i := range c.Flags {
		if c.Flags[i].ID == "" {
			c.Flags[i].ID = gen.Next("flag")
		}
	}
}

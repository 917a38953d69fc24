package chart

// Builder assembles a chart programmatically, generating ids as it goes.
//
//	b := chart.NewBuilder("Release plan")
//	dev := b.Lane("Development")
//	api := b.Task(dev, "API", 0, 5)
//	ui := b.Task(dev, "UI", 5, 3)
//	b.Link(api, ui)
//	c := b.Chart()
type Builder struct {
	c   Chart
	ids *IDGen
}

// NewBuilder starts an empty chart with the given title.
func NewBuilder(title string) *Builder {
	return &Builder{c: Chart{Title: title}, ids: NewIDGen()}
}

// Unit sets the time unit label.
func (b *Builder) Unit(unit string) *Builder {
	b.c.Unit = unit
	return b
}

// Lane appends a swimlane and returns its id.
func (b *Builder) Lane(name string) string {
	id := b.ids.Next("lane")
	b.c.Swimlanes = append(b.c.Swimlanes, Swimlane{ID: id, Name: name})
	return id
}

// Task adds a task to the lane and returns its id. Unknown lanes are ignored
// and yield "".
func (b *Builder) Task(laneID, label string, start, duration float64) string {
	return b.item(laneID, KindTask, label, start, duration)
}

// State adds a state span to the lane and returns its id.
func (b *Builder) State(laneID, label string, start, duration float64) string {
	return b.item(laneID, KindState, label, start, duration)
}

func (b *Builder) item(laneID string, kind ItemKind, label string, start, duration float64) string {
	li := b.c.LaneIndex(laneID)
	if li < 0 {
		return ""
	}
	id := b.ids.Next("item")
	b.c.Swimlanes[li].Items = append(b.c.Swimlanes[li].Items, Item{
		ID:       id,
		Kind:     kind,
		Label:    label,
		Start:    start,
		Duration: duration,
	})
	return id
}

// Link connects the finish of one item to the start of another.
func (b *Builder) Link(fromID, toID string) string {
	return b.LinkHandles(fromID, HandleFinish, toID, HandleStart)
}

// LinkHandles connects two items using explicit handles.
func (b *Builder) LinkHandles(fromID string, fromHandle Handle, toID string, toHandle Handle) string {
	id := b.ids.Next("link")
	l := Link{ID: id, FromID: fromID, ToID: toID, FromHandle: fromHandle, ToHandle: toHandle}
	if ref, ok := b.c.FindItem(fromID); ok {
		l.FromSwimlaneID = ref.SwimlaneID
	}
	if ref, ok := b.c.FindItem(toID); ok {
		l.ToSwimlaneID = ref.SwimlaneID
	}
	b.c.Links = append(b.c.Links, l)
	return id
}

// Flag adds a timeline marker and returns its id.
func (b *Builder) Flag(label string, at float64) string {
	id := b.ids.Next("flag")
	b.c.Flags = append(b.c.Flags, Flag{ID: id, Label: label, At: at})
	return id
}

// Chart returns the assembled chart. The builder can keep being used; later
// calls do not affect charts already returned.
func (b *Builder) Chart() *Chart {
	c := b.c
	c.Swimlanes = make([]Swimlane, len(b.c.Swimlanes))
	for i, lane := range b.c.Swimlanes {
		lane.Items = append([]Item(nil), lane.Items...)
		c.Swimlanes[i] = lane
	}
	c.Links = append([]Link(nil), b.c.Links...)
	c.Flags = append([]Flag(nil), b.c.Flags...)
	return &c
}

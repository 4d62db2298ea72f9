package hud

// Item is one block of overlay text. Position is the top-left corner in
// framebuffer pixels.
type Item struct {
	Text     string
	Position [2]float32
	Scale    float32
	Color    [4]float32
}

// Overlay collects the text drawn on top of the particles for one frame.
type Overlay struct {
	items   []Item
	version uint64
}

// Clear drops every item.
func (o *Overlay) Clear() {
	if len(o.items) == 0 {
		return
	}
	o.items = o.items[:0]
	o.version++
}

// Print queues text at (x, y).
func (o *Overlay) Print(text string, x, y, scale float32, color [4]float32) {
	o.items = append(o.items, Item{
		Text:     text,
		Position: [2]float32{x, y},
		Scale:    scale,
		Color:    color,
	})
	o.version++
}

func (o *Overlay) Items() []Item { return o.items }

// Version changes whenever the item list changes, so backends can skip
// re-uploading an unchanged overlay.
func (o *Overlay) Version() uint64 { return o.version }

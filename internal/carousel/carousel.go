package carousel

import "time"

// Carousel ties slot assignment to the scroll container.
type Carousel struct {
	Manager
	scroller *Scroller
	ids      []string
	width    float64
}

// New returns an empty Carousel.
func New() *Carousel {
	return &Carousel{scroller: NewScroller()}
}

// Scroller exposes the scroll container.
func (c *Carousel) Scroller() *Scroller { return c.scroller }

// Show makes currentID current, as keyboard navigation or an URL change
// does. The container jumps to it without animation and no change is
// reported.
func (c *Carousel) Show(ids []string, currentID string) []Assignment {
	c.ids = ids
	a := c.SetCurrent(ids, currentID)
	c.scroller.Layout(len(c.Window()), c.width, c.CurrentPosition())
	return a
}

// Resize updates the slide width and re-aligns the container.
func (c *Carousel) Resize(width float64) {
	if width == c.width {
		return
	}
	c.width = width
	c.scroller.Layout(len(c.Window()), width, c.CurrentPosition())
}

// Tick drives the scroll container. When a user scroll settles on another
// photo it returns that photo's id and the new assignments; the change is
// reported exactly once.
func (c *Carousel) Tick(now time.Time) (string, []Assignment, bool) {
	pos, changed := c.scroller.Tick(now)
	if !changed {
		return "", nil, false
	}
	id, ok := c.At(pos)
	if !ok {
		return "", nil, false
	}
	return id, c.Show(c.ids, id), true
}

// Offset is the horizontal screen position of a slide at pos.
func (c *Carousel) Offset(pos int) float64 {
	return float64(pos)*c.width - c.scroller.ScrollLeft()
}

package headless

import (
	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
)

// overlay holds the label containers mounted on top of a map.
type overlay struct {
	containers map[string]*labelContainer
}

func newOverlay() *overlay {
	return &overlay{containers: make(map[string]*labelContainer)}
}

func (o *overlay) mount(class string) *labelContainer {
	c := &labelContainer{class: class, visible: true, owner: o}
	o.containers[class] = c
	return c
}

func (o *overlay) find(class string) (*labelContainer, bool) {
	c, ok := o.containers[class]
	return c, ok
}

// labelContainer is the in-memory counterpart of a label overlay element.
type labelContainer struct {
	class   string
	labels  []domain.LabelDescriptor
	visible bool
	owner   *overlay
}

var _ ports.LabelContainer = (*labelContainer)(nil)

func (c *labelContainer) Replace(labels []domain.LabelDescriptor) {
	c.labels = append(c.labels[:0:0], labels...)
}

func (c *labelContainer) SetVisible(visible bool) {
	c.visible = visible
}

func (c *labelContainer) Unmount() {
	if c.owner == nil {
		return
	}
	if cur, ok := c.owner.containers[c.class]; ok && cur == c {
		delete(c.owner.containers, c.class)
	}
	c.owner = nil
}

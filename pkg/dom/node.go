package dom

import (
	"slices"
	"strings"

	"golang.org/x/image/font"
)

// Node is a positioned box.
type Node struct {
	ID      string
	Tag     string
	Classes []string

	// Top is the distance from the parent's content origin.
	Top float64
	// Height is the box height. Zero means automatic: the text height for
	// text nodes, otherwise the extent of the children.
	Height float64
	// Hidden removes the node from layout, like display:none.
	Hidden bool
	// Scrollable clips children to Height and adds a scroll offset.
	Scrollable bool
	// Text gives the node intrinsic, font-measured content.
	Text *Text

	doc       *Document
	parent    *Node
	children  []*Node
	scrollTop float64
}

// Text is wrapped text laid out in a column Width pixels wide. A
// non-positive Width only breaks on newlines.
type Text struct {
	Content string
	Width   int
}

// Append adds children in order and returns n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c.parent != nil {
			c.Remove()
		}
		c.parent = n
		c.adopt(n.doc)
		n.children = append(n.children, c)
	}
	return n
}

func (n *Node) adopt(d *Document) {
	n.doc = d
	for _, c := range n.children {
		c.adopt(d)
	}
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n.parent == nil {
		return
	}
	p := n.parent
	if i := slices.Index(p.children, n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = nil
	n.adopt(nil)
}

// Parent returns the parent node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// ScrollTop returns the node's own scroll offset.
func (n *Node) ScrollTop() float64 { return n.scrollTop }

// ScrollTo scrolls a scrollable node, clamped to its content, and notifies
// its scroll listeners when the offset changed.
func (n *Node) ScrollTo(y float64) {
	if !n.Scrollable {
		return
	}
	y = clamp(y, 0, n.scrollHeight()-n.renderedHeight())
	if y == n.scrollTop {
		return
	}
	n.scrollTop = y
	if n.doc != nil {
		n.doc.notify(n.doc.scrollSubs[n])
	}
}

func (n *Node) String() string {
	if n.ID != "" {
		return "#" + n.ID
	}
	if n.Tag != "" {
		return n.Tag
	}
	return "node"
}

func (n *Node) displayed() bool {
	for k := n; k != nil; k = k.parent {
		if k.Hidden {
			return false
		}
	}
	return true
}

// renderedHeight is the layout height (offsetHeight).
func (n *Node) renderedHeight() float64 {
	if n.Hidden {
		return 0
	}
	if n.Height > 0 {
		return n.Height
	}
	if n.Text != nil {
		return n.textHeight()
	}
	return n.childExtent()
}

func (n *Node) childExtent() float64 {
	var extent float64
	for _, c := range n.children {
		if c.Hidden {
			continue
		}
		extent = max(extent, c.Top+c.renderedHeight())
	}
	return extent
}

// scrollHeight is the height of the scrollable content.
func (n *Node) scrollHeight() float64 {
	return max(n.renderedHeight(), n.childExtent())
}

// windowTop returns the node's top edge relative to the window.
func (n *Node) windowTop() float64 {
	if n.parent == nil {
		if n.doc != nil {
			return n.Top - n.doc.scrollY
		}
		return n.Top
	}
	origin := n.parent.windowTop()
	if n.parent.Scrollable {
		origin -= n.parent.scrollTop
	}
	return origin + n.Top
}

func (n *Node) textHeight() float64 {
	face := n.face()
	lineHeight := face.Metrics().Height.Ceil()
	return float64(len(wrap(face, n.Text.Content, n.Text.Width)) * lineHeight)
}

func (n *Node) face() font.Face {
	if n.doc != nil && n.doc.face != nil {
		return n.doc.face
	}
	return defaultFace
}

// wrap breaks content into lines no wider than width pixels. Words longer
// than a line get a line of their own.
func wrap(face font.Face, content string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(content, "\n") {
		if width <= 0 {
			lines = append(lines, paragraph)
			continue
		}
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if font.MeasureString(face, candidate).Ceil() > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

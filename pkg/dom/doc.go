// Package dom is an in-memory document that hosts scroll containers.
//
// A Document is a tree of absolutely positioned boxes. Each Node is placed
// at Top pixels below its parent's content origin; scrollable nodes clip
// their children and carry their own scroll offset. Bounding boxes are
// reported relative to the visible window, the way a browser reports them,
// so nested scroll containers see the same coordinates they would in a page.
//
//	doc := dom.New(800)
//	doc.Body().Append(
//	    &dom.Node{ID: "hero", Top: 1200, Height: 300},
//	    &dom.Node{ID: "feed", Top: 2000, Height: 400, Scrollable: true},
//	)
//	root := scroll.NewRoot(doc)
//	doc.ScrollTo(1000)
//
// Documents are driven from a single goroutine. Resize debouncing runs on the
// document's clock, a clock.Manual by default, advanced with Advance.
package dom

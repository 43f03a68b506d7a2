// Package testing provides a harness for testing code built on scroll
// containers.
//
// # Quick Start
//
// Create a harness, lay out a document, watch an element and drive the
// window:
//
//	func TestHero(t *testing.T) {
//	    h := scrolltest.New(t, 600)
//	    h.Doc.Body().Append(&dom.Node{ID: "hero", Top: 900, Height: 100}, scrolltest.Spacer(5000))
//
//	    hero := h.Create(scroll.Select("#hero"))
//	    rec := scrolltest.Record(hero)
//
//	    h.ScrollTo(500)
//	    if !hero.IsInViewport() {
//	        t.Error("expected hero in viewport")
//	    }
//	    rec.Expect(t, scroll.EnterViewport, scroll.FullyEnterViewport, scroll.VisibilityChange, scroll.StateChange)
//	}
//
// # Time
//
// Resize handling is debounced on a manual clock:
//
//	h.Resize(400)
//	h.Advance(scroll.DefaultResizeDebounce)
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import scrolltest "github.com/go-drift/scrollwatch/pkg/testing"
package testing

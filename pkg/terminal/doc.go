// Package terminal hosts scroll containers on a tcell screen.
//
// A Document is a text buffer shown one line per screen row. Each row counts
// as one pixel, so element geometry is measured in lines. Lines that start
// with "#label" become addressable targets:
//
//	doc, _ := terminal.New(screen, text)
//	root := scroll.NewRoot(doc, scroll.WithObserver(doc))
//	el, _ := root.Create(scroll.Select("#intro"))
//	err := doc.Run(ctx)
//
// The bottom row of the screen is a status bar listing the latest events.
// Scheduled callbacks, such as the debounced resize handler, are delivered
// through the screen's event queue and run on the goroutine calling Run.
package terminal

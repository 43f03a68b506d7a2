package terminal

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

var (
	textStyle   = tcell.StyleDefault
	labelStyle  = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorYellow)
	statusStyle = tcell.StyleDefault.Reverse(true)
)

// quit is posted to stop Run.
type quit struct{}

// Draw paints the visible lines and the status bar, then shows the screen.
func (d *Document) Draw() {
	d.screen.Clear()
	width, _ := d.screen.Size()
	rows := d.ViewportHeight()
	for row := 0; row < rows; row++ {
		i := d.top + row
		if i >= len(d.lines) {
			break
		}
		style := textStyle
		if d.lines[i].Label != "" {
			style = labelStyle
		}
		drawText(d.screen, 0, row, width, d.lines[i].Text, style)
	}
	drawText(d.screen, 0, rows, width, padRight(d.statusLine(), width), statusStyle)
	d.screen.Show()
}

func (d *Document) statusLine() string {
	pos := fmt.Sprintf(" %d-%d/%d ", d.top+1, min(d.top+d.ViewportHeight(), len(d.lines)), len(d.lines))
	if len(d.status) == 0 {
		return pos
	}
	return pos + "| " + strings.Join(d.status, " | ")
}

func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// drawText writes s from (x, y), clipped to width columns.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > width {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x += w
	}
}

// HandleEvent applies one screen event. It reports false when the viewer
// should stop.
func (d *Document) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case func():
			data()
		case quit:
			return false
		}
	case *tcell.EventResize:
		d.screen.Sync()
		d.resized()
	case *tcell.EventMouse:
		switch {
		case ev.Buttons()&tcell.WheelUp != 0:
			d.ScrollBy(-1)
		case ev.Buttons()&tcell.WheelDown != 0:
			d.ScrollBy(1)
		}
	case *tcell.EventKey:
		return d.handleKey(ev)
	}
	return true
}

func (d *Document) handleKey(ev *tcell.EventKey) bool {
	page := max(d.ViewportHeight()-1, 1)
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		d.ScrollBy(-1)
	case tcell.KeyDown, tcell.KeyEnter:
		d.ScrollBy(1)
	case tcell.KeyPgUp:
		d.ScrollBy(-page)
	case tcell.KeyPgDn:
		d.ScrollBy(page)
	case tcell.KeyHome:
		d.ScrollTo(0)
	case tcell.KeyEnd:
		d.ScrollTo(len(d.lines))
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'k':
			d.ScrollBy(-1)
		case 'j', ' ':
			d.ScrollBy(1)
		case 'g':
			d.ScrollTo(0)
		case 'G':
			d.ScrollTo(len(d.lines))
		}
	}
	return true
}

// Run draws the document and processes screen events until the user quits
// or ctx is done.
func (d *Document) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		d.screen.PostEvent(tcell.NewEventInterrupt(quit{}))
	})
	defer stop()

	d.screen.EnableMouse()
	d.Draw()
	for {
		ev := d.screen.PollEvent()
		if ev == nil {
			return ctx.Err()
		}
		if !d.HandleEvent(ev) {
			d.log.Debug("viewer stopped", zap.Int("top", d.top))
			return ctx.Err()
		}
		d.Draw()
	}
}

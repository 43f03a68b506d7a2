package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/gorilla/websocket"

	"github.com/go-drift/scrollwatch/pkg/clock"
	"github.com/go-drift/scrollwatch/pkg/dom"
	"github.com/go-drift/scrollwatch/pkg/scroll"
	scrolltest "github.com/go-drift/scrollwatch/pkg/testing"
)

func setup(t *testing.T, opts ...Option) (*Monitor, *scrolltest.Harness, *scroll.Element) {
	t.Helper()
	mon := NewMonitor(append([]Option{WithClock(clock.NewManual())}, opts...)...)
	h := scrolltest.New(t, 600, scroll.WithObserver(mon))
	h.Doc.Body().Append(scrolltest.Spacer(5000), &dom.Node{ID: "hero", Top: 900, Height: 100})
	return mon, h, h.Create(scroll.Select("#hero"))
}

func TestMonitor_RecordsEvents(t *testing.T) {
	mon, h, el := setup(t)
	h.ScrollTo(500)

	var kinds []scroll.Event
	for _, r := range mon.Events(0) {
		kinds = append(kinds, r.Kind)
		if r.Element != el.ID() || r.Target != "#hero" {
			t.Errorf("record %d = %+v, want element %s #hero", r.Seq, r, el.ID())
		}
	}
	want := []scroll.Event{scroll.EnterViewport, scroll.FullyEnterViewport, scroll.VisibilityChange, scroll.StateChange}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("recorded kinds mismatch (-want +got):\n%s", diff)
	}
	if got := mon.Events(3); len(got) != 1 || got[0].Kind != scroll.StateChange {
		t.Errorf("Events(3) = %+v, want the last record", got)
	}
	if got := mon.Events(10); len(got) != 0 {
		t.Errorf("Events(10) = %+v, want none", got)
	}

	snap, ok := mon.Element(el.ID())
	if !ok {
		t.Fatal("no snapshot for element")
	}
	want2 := Snapshot{
		ID: el.ID(), Target: "#hero", Container: "root",
		Top: 900, Bottom: 1000, Height: 100,
		State: State{InViewport: true, FullyInViewport: true},
	}
	if diff := cmp.Diff(want2, snap, cmpopts.IgnoreFields(Snapshot{}, "Updated")); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestMonitor_History(t *testing.T) {
	mon, h, _ := setup(t, WithHistory(3))
	h.ScrollTo(500)
	h.ScrollTo(2000)

	events := mon.Events(0)
	if len(events) != 3 {
		t.Fatalf("kept %d events, want 3", len(events))
	}
	if events[2].Seq != 8 || events[0].Seq != 6 {
		t.Errorf("kept seqs %d..%d, want 6..8", events[0].Seq, events[2].Seq)
	}
}

func TestMonitor_Capture(t *testing.T) {
	mon, h, el := setup(t)
	pos := h.Create(scroll.Position(300))
	if len(mon.Elements()) != 0 {
		t.Fatalf("Elements() before any event = %d, want 0", len(mon.Elements()))
	}

	mon.Capture(h.Root)
	snaps := mon.Elements()
	got := []string{snaps[0].Target, snaps[1].Target}
	if diff := cmp.Diff([]string{"#hero", "position(300)"}, got); diff != "" {
		t.Errorf("captured targets mismatch (-want +got):\n%s", diff)
	}
	if snaps[0].ID != el.ID() || snaps[1].ID != pos.ID() {
		t.Error("snapshots out of creation order")
	}

	el.Destroy()
	snap, _ := mon.Element(el.ID())
	if !snap.Destroyed {
		t.Error("snapshot not marked destroyed")
	}
}

func TestSafeFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12.5, "12.5"},
		{math.NaN(), `"NaN"`},
		{math.Inf(1), `"Infinity"`},
		{math.Inf(-1), `"-Infinity"`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(SafeFloat(tt.in))
		if err != nil || string(data) != tt.want {
			t.Errorf("Marshal(%v) = %s, %v; want %s", tt.in, data, err, tt.want)
		}
	}
}

func get(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(body, v); err != nil {
			t.Fatalf("decode %s: %v\n%s", url, err, body)
		}
	}
	return resp.StatusCode
}

func TestHandler(t *testing.T) {
	mon, h, el := setup(t)
	h.ScrollTo(500)
	srv := httptest.NewServer(mon.Handler())
	defer srv.Close()

	var health map[string]any
	if code := get(t, srv.URL+"/health", &health); code != http.StatusOK || health["status"] != "ok" {
		t.Errorf("/health = %d %v", code, health)
	}

	var elements []Snapshot
	get(t, srv.URL+"/elements", &elements)
	if len(elements) != 1 || elements[0].ID != el.ID() {
		t.Errorf("/elements = %+v", elements)
	}

	var one Snapshot
	if code := get(t, srv.URL+"/elements/"+el.ID().String(), &one); code != http.StatusOK || !one.State.FullyInViewport {
		t.Errorf("/elements/{id} = %d %+v", code, one)
	}

	var events []Record
	get(t, srv.URL+"/events?since=2", &events)
	if len(events) != 2 || events[0].Kind != scroll.VisibilityChange {
		t.Errorf("/events?since=2 = %+v", events)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/elements/not-a-uuid", http.StatusBadRequest},
		{"/elements/00000000-0000-0000-0000-000000000000", http.StatusNotFound},
		{"/events?since=x", http.StatusBadRequest},
		{"/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		if code := get(t, srv.URL+tt.path, nil); code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, code, tt.want)
		}
	}

	resp, err := http.Post(srv.URL+"/elements", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /elements = %d, want 405", resp.StatusCode)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStream(t *testing.T) {
	mon, h, _ := setup(t)
	srv := httptest.NewServer(mon.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return mon.Clients() == 1 })

	h.ScrollTo(350)

	var kinds []scroll.Event
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 0; i < 3; i++ {
		var rec Record
		if err := conn.ReadJSON(&rec); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		kinds = append(kinds, rec.Kind)
	}
	want := []scroll.Event{scroll.EnterViewport, scroll.VisibilityChange, scroll.StateChange}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("streamed kinds mismatch (-want +got):\n%s", diff)
	}

	conn.Close()
	waitFor(t, func() bool { return mon.Clients() == 0 })
}

func TestStartStop(t *testing.T) {
	mon, _, _ := setup(t)
	port, err := mon.Start("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	if again, err := mon.Start("127.0.0.1:0"); err != nil || again != port {
		t.Errorf("second Start = %d, %v; want %d", again, err, port)
	}

	if code := get(t, fmt.Sprintf("http://127.0.0.1:%d/health", port), nil); code != http.StatusOK {
		t.Errorf("/health = %d", code)
	}
	if err := mon.Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := mon.Stop(context.Background()); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

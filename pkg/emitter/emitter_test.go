package emitter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type kind string

const (
	kindA kind = "a"
	kindB kind = "b"
)

func TestEmitter_OrderAndCount(t *testing.T) {
	var e Emitter[kind, int]
	var got []string
	e.On(kindA, func(v int) { got = append(got, "first") })
	e.On(kindA, func(v int) { got = append(got, "second") })
	e.On(kindB, func(v int) { got = append(got, "other") })

	if n := e.Emit(kindA, 1); n != 2 {
		t.Errorf("Emit returned %d, want 2", n)
	}
	if diff := cmp.Diff([]string{"first", "second"}, got); diff != "" {
		t.Errorf("dispatch order mismatch (-want +got):\n%s", diff)
	}
	if e.ListenerCount(kindA) != 2 || e.ListenerCount(kindB) != 1 {
		t.Errorf("ListenerCount = %d/%d, want 2/1", e.ListenerCount(kindA), e.ListenerCount(kindB))
	}
}

func TestEmitter_Off(t *testing.T) {
	var e Emitter[kind, int]
	calls := 0
	off := e.On(kindA, func(int) { calls++ })
	e.Emit(kindA, 0)
	off()
	off()
	e.Emit(kindA, 0)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if e.ListenerCount(kindA) != 0 {
		t.Errorf("ListenerCount = %d, want 0", e.ListenerCount(kindA))
	}
}

func TestEmitter_Once(t *testing.T) {
	var e Emitter[kind, string]
	var got []string
	e.Once(kindA, func(v string) { got = append(got, v) })
	e.Emit(kindA, "x")
	e.Emit(kindA, "y")
	if diff := cmp.Diff([]string{"x"}, got); diff != "" {
		t.Errorf("once mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitter_RemoveDuringDispatch(t *testing.T) {
	var e Emitter[kind, int]
	var got []string
	var offSecond func()
	e.On(kindA, func(int) {
		got = append(got, "first")
		offSecond()
	})
	offSecond = e.On(kindA, func(int) { got = append(got, "second") })
	e.On(kindA, func(int) { got = append(got, "third") })

	e.Emit(kindA, 0)
	if diff := cmp.Diff([]string{"first", "third"}, got); diff != "" {
		t.Errorf("removed listener was called (-want +got):\n%s", diff)
	}
}

func TestEmitter_AddDuringDispatch(t *testing.T) {
	var e Emitter[kind, int]
	added := 0
	e.On(kindA, func(int) {
		e.On(kindA, func(int) { added++ })
	})
	e.Emit(kindA, 0)
	if added != 0 {
		t.Errorf("listener added during dispatch ran in the same dispatch")
	}
	e.Emit(kindA, 0)
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
}

func TestEmitter_RemoveAllDuringDispatch(t *testing.T) {
	var e Emitter[kind, int]
	calls := 0
	e.On(kindA, func(int) {
		calls++
		e.RemoveAllListeners()
	})
	e.On(kindA, func(int) { calls++ })
	e.On(kindB, func(int) { calls++ })

	e.Emit(kindA, 0)
	e.Emit(kindB, 0)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestEmitter_RemoveAllListenersByKind(t *testing.T) {
	var e Emitter[kind, int]
	e.On(kindA, func(int) {})
	e.On(kindB, func(int) {})
	e.RemoveAllListeners(kindA)
	if e.ListenerCount(kindA) != 0 {
		t.Error("kindA listeners survived")
	}
	if e.ListenerCount(kindB) != 1 {
		t.Error("kindB listeners were removed")
	}
}

func TestEmitter_NilListener(t *testing.T) {
	var e Emitter[kind, int]
	off := e.On(kindA, nil)
	off()
	if e.ListenerCount(kindA) != 0 {
		t.Error("nil listener was registered")
	}
}

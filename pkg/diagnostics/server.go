package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/go-drift/scrollwatch/pkg/errors"
)

// Handler returns the router serving the diagnostics endpoints.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", m.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/elements", m.handleElements).Methods(http.MethodGet)
	r.HandleFunc("/elements/{id}", m.handleElement).Methods(http.MethodGet)
	r.HandleFunc("/events", m.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/ws", m.handleStream)
	return r
}

// Start serves the endpoints on addr in the background and returns the bound
// port, which is useful with ":0". Starting a running monitor returns its
// current port.
func (m *Monitor) Start(addr string) (int, error) {
	m.serverMu.Lock()
	defer m.serverMu.Unlock()

	if m.server != nil {
		return m.listener.Addr().(*net.TCPAddr).Port, nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, &errors.ScrollError{
			Op:   "diagnostics.Start",
			Kind: errors.KindPlatform,
			Err:  fmt.Errorf("listen %s: %w", addr, err),
		}
	}
	server := &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	m.server, m.listener = server, listener
	port := listener.Addr().(*net.TCPAddr).Port
	m.log.Info("diagnostics server listening", zap.Int("port", port))

	go func() {
		defer errors.Recover("diagnostics.serve")
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			m.serverMu.Lock()
			if m.server == server {
				m.server, m.listener = nil, nil
			}
			m.serverMu.Unlock()
			errors.Report(&errors.ScrollError{Op: "diagnostics.serve", Kind: errors.KindPlatform, Err: err})
		}
	}()
	return port, nil
}

// Stop closes stream clients and shuts the server down.
func (m *Monitor) Stop(ctx context.Context) error {
	m.serverMu.Lock()
	server := m.server
	m.server, m.listener = nil, nil
	m.serverMu.Unlock()

	m.closeClients()
	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func (m *Monitor) handleHealth(w http.ResponseWriter, _ *http.Request) {
	m.mu.RLock()
	body := map[string]any{
		"status":   "ok",
		"elements": len(m.order),
		"events":   m.seq,
	}
	m.mu.RUnlock()
	writeJSON(w, http.StatusOK, body)
}

func (m *Monitor) handleElements(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.Elements())
}

func (m *Monitor) handleElement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid element id", http.StatusBadRequest)
		return
	}
	s, ok := m.Element(id)
	if !ok {
		http.Error(w, "element not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (m *Monitor) handleEvents(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid since", http.StatusBadRequest)
			return
		}
		since = n
	}
	writeJSON(w, http.StatusOK, m.Events(since))
}

// writeJSON encodes to a buffer first so encoding errors still produce a
// clean 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

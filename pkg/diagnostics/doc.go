// Package diagnostics serves the state of scroll containers over HTTP.
//
// A Monitor is installed as the observer of a root container. It records
// every emitted event and keeps a snapshot per element, and streams events to
// WebSocket clients as they happen:
//
//	mon := diagnostics.NewMonitor()
//	root := scroll.NewRoot(host, scroll.WithObserver(mon))
//	port, err := mon.Start(":0")
//	defer mon.Stop(context.Background())
//
// Endpoints:
//
//	GET /health          liveness probe
//	GET /elements        element snapshots in creation order
//	GET /elements/{id}   one element snapshot
//	GET /events?since=N  recorded events with a sequence number above N
//	GET /ws              live event stream, one JSON record per message
//
// Observe and Capture run on the host's event loop; HTTP handlers read the
// recorded data under a lock and never touch containers directly.
package diagnostics

// Package server tracks element sizes reported by remote clients over
// WebSocket.
//
// A browser client runs a ResizeObserver on behalf of the server. The
// server tells it which nodes to watch with Observe and Unobserve frames,
// and the client answers with Resize frames carrying each node's box.
// Every connection gets its own Session with a private raf.Loop, so all
// hooks, observers and frame flushes for a client run on one goroutine:
//
//	srv := server.New(&server.Config{
//	    Addr: ":8080",
//	    Mount: server.TrackQueryNodes(func(s *server.Session, node string, size *resize.Size) {
//	        log.Printf("%s %s = %v", s.ID(), node, size)
//	    }),
//	})
//	srv.Run(ctx)
//
// Routes:
//
//	GET /ws       WebSocket upgrade, one Session per connection
//	GET /metrics  Prometheus metrics when a Gatherer is configured
//	GET /healthz  liveness probe
package server

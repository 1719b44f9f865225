// Package statserver exposes the switch counters over HTTP for display and
// scraping. Read-only; the switch core is the single writer.
package statserver

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/caesarchess/switchcore/internal/colorswitch"
	"github.com/caesarchess/switchcore/internal/obslog"
)

// SnapshotFunc produces the current counter view on demand.
type SnapshotFunc func() colorswitch.Snapshot

// Server serves GET /stats with a JSON snapshot.
type Server struct {
	addr     string
	snapshot SnapshotFunc
	srv      *fasthttp.Server
}

func New(addr string, snapshot SnapshotFunc) *Server {
	s := &Server{addr: addr, snapshot: snapshot}
	s.srv = &fasthttp.Server{
		Handler:          s.Handle,
		Name:             "switchcore-stats",
		DisableKeepalive: false,
	}
	return s
}

// ListenAndServe blocks until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	obslog.L().Info("stats_server_listening", zap.String("addr", s.addr))
	return s.srv.ListenAndServe(s.addr)
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

// Handle routes a single request. Exported so tests can drive it with a
// constructed RequestCtx.
func (s *Server) Handle(ctx *fasthttp.RequestCtx) {
	if string(ctx.Path()) != "/stats" {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	if !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	body, err := json.Marshal(s.snapshot())
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(body)
}

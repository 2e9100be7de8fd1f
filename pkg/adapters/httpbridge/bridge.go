// Package httpbridge exposes the dev-harness control surface over HTTP.
// Vendor bus requests map onto POST routes and the engine's introspection
// snapshot is served read-only, so replays can be triggered and observed
// from outside the process while a simulation runs.
package httpbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/user/replaycap/pkg/engine"
	"github.com/user/replaycap/pkg/ports"
)

// maxPayloadBytes bounds a vendor request body.
const maxPayloadBytes = 1 << 20

// Dispatcher routes one vendor request to its registered handler. The
// second return is false when no handler is registered for the pair.
type Dispatcher interface {
	Dispatch(vendor, request string, payload []byte) ([]byte, bool)
}

// StatusSource reports the engine snapshot served on the read-only routes.
type StatusSource interface {
	Status() engine.Status
}

// Bridge is the HTTP control surface. Vendor requests arrive as POST
// bodies and are answered with the handler's response document verbatim,
// so the HTTP surface stays a thin stand-in for the host's IPC bus.
type Bridge struct {
	dispatcher Dispatcher
	status     StatusSource
	logger     ports.Logger
}

// New creates a bridge over the given dispatcher and status source.
func New(dispatcher Dispatcher, status StatusSource, logger ports.Logger) *Bridge {
	return &Bridge{
		dispatcher: dispatcher,
		status:     status,
		logger:     logger,
	}
}

// Router builds the route table.
func (b *Bridge) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/status", b.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/scenes", b.handleScenes).Methods(http.MethodGet)
	r.HandleFunc("/api/vendor/{vendor}/{request}", b.handleVendor).Methods(http.MethodPost)
	return r
}

// Serve runs the bridge on addr until ctx is cancelled. The listener is
// bound before the serving goroutine starts, so a taken port surfaces as
// an immediate error instead of a dead endpoint.
func (b *Bridge) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           b.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	}
}

func (b *Bridge) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, b.status.Status())
}

func (b *Bridge) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, b.status.Status().Scenes)
}

func (b *Bridge) handleVendor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	vendor, request := vars["vendor"], vars["request"]

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		http.Error(w, "read request body", http.StatusBadRequest)
		return
	}

	resp, ok := b.dispatcher.Dispatch(vendor, request, payload)
	if !ok {
		http.Error(w, fmt.Sprintf("no handler for %s/%s", vendor, request), http.StatusNotFound)
		return
	}

	b.logger.Debug("dispatched %s/%s", vendor, request)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

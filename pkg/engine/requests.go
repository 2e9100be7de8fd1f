package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ideamans/go-l10n"
)

const (
	// VendorName identifies the engine on the host's vendor request bus.
	VendorName = "replay-plugin"

	// RequestReplayScene plays one scene's replay and returns to the
	// previous program scene.
	RequestReplayScene = "ReplayScene"

	// RequestSaveAllReplays writes a file for every savable scene.
	RequestSaveAllReplays = "SaveAllReplays"
)

// replayRequest is the ReplayScene payload.
type replayRequest struct {
	Scene string `json:"scene"`
}

// vendorResponse is the response document of every vendor request.
type vendorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func marshalResponse(resp vendorResponse) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		// Cannot happen for this shape; keep the bus fed regardless.
		return []byte(`{"success":false,"error":"internal"}`)
	}
	return data
}

// RegisterVendorRequests exposes the command surface on the host's vendor
// bus.
func (e *Engine) RegisterVendorRequests() error {
	if err := e.host.RegisterVendorRequest(VendorName, RequestReplayScene, e.handleReplayScene); err != nil {
		return fmt.Errorf("register %s/%s: %w", VendorName, RequestReplayScene, err)
	}
	if err := e.host.RegisterVendorRequest(VendorName, RequestSaveAllReplays, e.handleSaveAllReplays); err != nil {
		return fmt.Errorf("register %s/%s: %w", VendorName, RequestSaveAllReplays, err)
	}
	return nil
}

// handleReplayScene validates the payload, spawns the detached replay
// worker and answers immediately. The response acknowledges the request
// only; playback failures are recovered in the worker and surface through
// the error log, never through the bus.
func (e *Engine) handleReplayScene(payload []byte) []byte {
	var req replayRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			e.logger.Warn("malformed ReplayScene payload: %v", err)
		}
	}
	if req.Scene == "" {
		return marshalResponse(vendorResponse{Success: false, Error: "No scene name provided"})
	}

	if err := e.controller.EnsureSceneAndSink(); err != nil {
		// The worker's program switch will fail and be recovered there.
		e.recordFailure(err, "prepare replay scene")
	}

	job := uuid.New().String()[:8]
	e.logger.Info(l10n.F("replay %s: scene %s", job, req.Scene))
	e.workers.Add(1)
	go func() {
		defer e.workers.Done()
		if err := e.controller.PlayAndReturn(context.Background(), req.Scene); err != nil {
			e.recordFailure(err, fmt.Sprintf("replay %s of %s", job, req.Scene))
			return
		}
		e.logger.Info(l10n.F("replay %s finished", job))
	}()

	return marshalResponse(vendorResponse{Success: true})
}

// handleSaveAllReplays saves every savable scene on the caller's thread and
// acknowledges. Per-scene failures are recovered and do not fail the
// request.
func (e *Engine) handleSaveAllReplays(payload []byte) []byte {
	e.SaveAllReplays()
	return marshalResponse(vendorResponse{Success: true})
}

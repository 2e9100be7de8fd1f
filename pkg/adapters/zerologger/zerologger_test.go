package zerologger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/user/replaycap/pkg/ports"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("line %q is not JSON: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLevelsAndFormatting(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, ports.LevelInfo)

	log.Debug("filtered out")
	log.Info("cached %d frames", 42)
	log.Error("save failed: %s", "disk full")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (debug filtered)", len(lines))
	}
	if lines[0]["level"] != "info" || lines[0]["message"] != "cached 42 frames" {
		t.Errorf("unexpected info line: %v", lines[0])
	}
	if lines[1]["level"] != "error" || lines[1]["message"] != "save failed: disk full" {
		t.Errorf("unexpected error line: %v", lines[1])
	}
	if _, ok := lines[0]["time"]; !ok {
		t.Error("missing timestamp field")
	}
}

func TestWithComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, ports.LevelDebug).WithComponent("playback")

	log.Debug("emitting")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0]["component"] != "playback" {
		t.Errorf("component field = %v, want playback", lines[0]["component"])
	}
}

func TestQuietDiscardsEverything(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, ports.LevelQuiet)

	log.Error("should not appear")

	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote %q", buf.String())
	}
}

func TestImplementsLoggerPort(t *testing.T) {
	var _ ports.Logger = New(&bytes.Buffer{}, ports.LevelInfo)
}

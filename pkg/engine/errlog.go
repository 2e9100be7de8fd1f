package engine

import "sync"

// errorLog retains the most recent recovered-failure messages for the
// status surface. It has its own small lock so recording a failure never
// contends with the registry mutex.
type errorLog struct {
	mu      sync.Mutex
	max     int
	entries []string
}

func newErrorLog(max int) *errorLog {
	return &errorLog{max: max}
}

// append adds msg, evicting the oldest entry beyond the retention limit.
func (l *errorLog) append(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, msg)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// snapshot returns a copy of the retained messages, oldest first.
func (l *errorLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

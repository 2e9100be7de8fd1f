package mocks

import (
	"sync"

	"github.com/user/replaycap/pkg/frame"
)

// CountingAllocator is a frame.Allocator that tracks live buffers so tests
// can prove admissions, evictions and teardown balance out.
type CountingAllocator struct {
	mu sync.Mutex

	gets         int
	puts         int
	liveBytes    int
	maxLiveBytes int
}

// NewCountingAllocator creates a new counting allocator.
func NewCountingAllocator() *CountingAllocator {
	return &CountingAllocator{}
}

func (m *CountingAllocator) Get(size int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	m.liveBytes += size
	if m.liveBytes > m.maxLiveBytes {
		m.maxLiveBytes = m.liveBytes
	}
	return make([]byte, size)
}

func (m *CountingAllocator) Put(buf []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.liveBytes -= len(buf)
}

// Outstanding returns the number of buffers obtained and not yet returned.
func (m *CountingAllocator) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets - m.puts
}

// LiveBytes returns the total size of buffers currently outstanding.
func (m *CountingAllocator) LiveBytes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liveBytes
}

// MaxLiveBytes returns the high-water mark of outstanding bytes, which lets
// tests bound the cache's memory against capacity × frame size.
func (m *CountingAllocator) MaxLiveBytes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxLiveBytes
}

// Gets returns the number of Get calls.
func (m *CountingAllocator) Gets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

var _ frame.Allocator = (*CountingAllocator)(nil)

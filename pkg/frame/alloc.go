package frame

// Allocator supplies and reclaims plane buffers. Every buffer a frame copy
// obtains through Get is returned through Put exactly once when the frame's
// last reference is released, which lets tests count outstanding buffers to
// prove eviction and teardown leave nothing allocated.
type Allocator interface {
	// Get returns a buffer of at least size bytes, sliced to size.
	Get(size int) []byte
	// Put returns a buffer obtained from Get.
	Put(buf []byte)
}

// HeapAllocator allocates plane buffers directly from the Go heap and lets
// the garbage collector reclaim them. It is the production allocator; pooled
// or counting allocators share the same interface.
type HeapAllocator struct{}

var _ Allocator = (*HeapAllocator)(nil)

// NewHeapAllocator returns the default allocator.
func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{}
}

// Get allocates a fresh buffer of size bytes.
func (h *HeapAllocator) Get(size int) []byte {
	return make([]byte, size)
}

// Put is a no-op; the garbage collector reclaims the buffer.
func (h *HeapAllocator) Put(buf []byte) {}

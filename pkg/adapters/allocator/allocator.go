// Package allocator provides the buffer allocator handed to decode engines.
package allocator

import (
	"os"
	"sync"

	"github.com/user/ornament/pkg/ports"
)

// maxFreePerSize caps how many released buffers of one size are kept for reuse.
const maxFreePerSize = 8

// Budget hands out buffers against a fixed byte budget and recycles released
// buffers of the same size. Exceeding the budget is unrecoverable: the failure is
// logged and the exit hook is called.
type Budget struct {
	mu          sync.Mutex
	limit       int64
	outstanding int64
	free        map[int][][]byte
	log         ports.Logger
	exit        func(code int)
}

// Option configures a Budget.
type Option func(*Budget)

// WithExit replaces os.Exit as the out-of-memory hook.
func WithExit(exit func(code int)) Option {
	return func(b *Budget) {
		b.exit = exit
	}
}

// New creates an allocator with the given budget in bytes. limit <= 0 means no limit.
func New(limit int64, log ports.Logger, opts ...Option) *Budget {
	b := &Budget{
		limit: limit,
		free:  make(map[int][][]byte),
		log:   log.WithComponent("allocator"),
		exit:  os.Exit,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allocate returns a buffer of exactly n bytes. Contents of
// recycled buffers are not cleared.
func (b *Budget) Allocate(n int) []byte {
	b.mu.Lock()
	if b.limit > 0 && b.outstanding+int64(n) > b.limit {
		outstanding := b.outstanding
		b.mu.Unlock()
		b.log.Error("Out of memory: %d bytes requested, %d of %d in use", n, outstanding, b.limit)
		b.exit(1)
		return nil
	}
	b.outstanding += int64(n)

	if list := b.free[n]; len(list) > 0 {
		buf := list[len(list)-1]
		b.free[n] = list[:len(list)-1]
		b.mu.Unlock()
		return buf
	}
	b.mu.Unlock()

	return make([]byte, n)
}

// Deallocate returns a buffer obtained from Allocate.
func (b *Budget) Deallocate(buf []byte) {
	if buf == nil {
		return
	}
	n := len(buf)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.outstanding -= int64(n)
	if b.outstanding < 0 {
		b.outstanding = 0
	}
	if len(b.free[n]) < maxFreePerSize {
		b.free[n] = append(b.free[n], buf[:n:n])
	}
}

// Limit returns the budget in bytes, or 0 when unlimited.
func (b *Budget) Limit() int64 {
	if b.limit < 0 {
		return 0
	}
	return b.limit
}

// Outstanding returns the number of bytes currently handed out.
func (b *Budget) Outstanding() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outstanding
}

var _ ports.LimitedAllocator = (*Budget)(nil)

package md2doc

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing.
const (
	MinPoolSize = 1
	// MaxPoolSize bounds automatic sizing. Each converter may own a Chrome
	// process once it prints.
	MaxPoolSize = 8
	// cpuDivisor leaves CPUs for the browser processes.
	cpuDivisor = 2
)

// ConverterPool shares up to Size converters between goroutines. Converters
// are built on demand, so a pool that only ever serves one caller holds one
// converter.
type ConverterPool struct {
	opts []Option

	idle    chan *Converter // converters ready for reuse
	permits chan struct{}   // one per converter not yet built
	done    chan struct{}   // closed by Close

	mu     sync.Mutex
	built  []*Converter
	out    map[*Converter]struct{} // converters handed out and not released
	closed bool
}

// NewConverterPool returns a pool of n converters built with opts. n below
// one is raised to one.
func NewConverterPool(n int, opts ...Option) *ConverterPool {
	n = max(n, MinPoolSize)
	p := &ConverterPool{
		opts:    opts,
		idle:    make(chan *Converter, n),
		permits: make(chan struct{}, n),
		done:    make(chan struct{}),
		out:     make(map[*Converter]struct{}, n),
	}
	for range n {
		p.permits <- struct{}{}
	}
	return p
}

// Acquire returns an idle converter, builds a new one while the pool is
// below capacity, or waits for a Release. It fails with ctx.Err() when ctx
// ends first and with ErrConverterClosed once the pool is closed.
func (p *ConverterPool) Acquire(ctx context.Context) (*Converter, error) {
	select {
	case <-p.done:
		return nil, ErrConverterClosed
	default:
	}

	// Reuse before building.
	select {
	case conv := <-p.idle:
		return p.checkOut(conv)
	default:
	}

	select {
	case conv := <-p.idle:
		return p.checkOut(conv)
	case <-p.permits:
		return p.build()
	case <-p.done:
		return nil, ErrConverterClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// build spends a permit on a new converter. The permit is returned when
// construction fails.
func (p *ConverterPool) build() (*Converter, error) {
	conv, err := NewConverter(p.opts...)
	if err != nil {
		p.permits <- struct{}{}
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = conv.Close()
		return nil, ErrConverterClosed
	}
	p.built = append(p.built, conv)
	p.out[conv] = struct{}{}
	return conv, nil
}

// checkOut marks an idle converter as handed out.
func (p *ConverterPool) checkOut(conv *Converter) (*Converter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrConverterClosed
	}
	p.out[conv] = struct{}{}
	return conv, nil
}

// Release hands conv back. Releasing into a closed pool, releasing twice or
// releasing a converter the pool did not hand out is a no-op.
func (p *ConverterPool) Release(conv *Converter) {
	if conv == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.out[conv]; !ok || p.closed {
		return
	}
	delete(p.out, conv)
	select {
	case p.idle <- conv:
	default:
	}
}

// Close shuts down every converter built so far and wakes blocked
// Acquire calls. Closing twice is a no-op.
func (p *ConverterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	built := p.built
	p.built = nil
	p.mu.Unlock()

	var errs []error
	for _, conv := range built {
		errs = append(errs, conv.Close())
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ConverterPool) Size() int {
	return cap(p.idle)
}

// ResolvePoolSize returns workers when positive. Otherwise it derives a
// size from GOMAXPROCS, which automaxprocs adjusts to container limits,
// within [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
}

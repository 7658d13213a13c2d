package conv

import (
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Pools of correlation workspaces, keyed by FFT size.
var (
	workspacePoolsMu sync.RWMutex
	workspacePools   = make(map[int]*sync.Pool)
)

// workspace holds one FFT plan and its scratch buffers. A workspace is used
// by a single goroutine at a time.
type workspace struct {
	plan *algofft.Plan[complex128]
	a    []complex128
	b    []complex128
	fa   []complex128
	fb   []complex128
}

// Correlator computes full cross-correlations of inputs with fixed lengths
// through the FFT. It is safe for concurrent use.
type Correlator struct {
	lenA    int
	lenB    int
	fftSize int
	pool    *sync.Pool
}

// NewCorrelator creates a correlator for inputs of length lenA and lenB.
func NewCorrelator(lenA, lenB int) (*Correlator, error) {
	if lenA <= 0 || lenB <= 0 {
		return nil, ErrEmptyInput
	}

	c := &Correlator{
		lenA:    lenA,
		lenB:    lenB,
		fftSize: nextPowerOf2(lenA + lenB - 1),
	}
	c.pool = getWorkspacePool(c.fftSize)

	// Fail early on plan creation rather than on first use.
	ws, err := c.acquire()
	if err != nil {
		return nil, err
	}
	c.pool.Put(ws)

	return c, nil
}

// Len returns the length of the full correlation, lenA + lenB - 1.
func (c *Correlator) Len() int { return c.lenA + c.lenB - 1 }

// FFTSize returns the transform size used internally.
func (c *Correlator) FFTSize() int { return c.fftSize }

// CorrelateTo writes the full cross-correlation of a and b into dst.
// Index k of dst corresponds to lag k - (lenB - 1).
func (c *Correlator) CorrelateTo(dst, a, b []float64) error {
	if len(a) != c.lenA || len(b) != c.lenB || len(dst) != c.Len() {
		return fmt.Errorf("%w: a %d/%d, b %d/%d, dst %d/%d",
			ErrLengthMismatch, len(a), c.lenA, len(b), c.lenB, len(dst), c.Len())
	}

	ws, err := c.acquire()
	if err != nil {
		return err
	}
	defer c.pool.Put(ws)

	for i := range ws.a {
		ws.a[i] = 0
		ws.b[i] = 0
	}
	for i, v := range a {
		ws.a[i] = complex(v, 0)
	}
	for i, v := range b {
		ws.b[i] = complex(v, 0)
	}

	if err := ws.plan.Forward(ws.fa, ws.a); err != nil {
		return fmt.Errorf("conv: forward FFT failed: %w", err)
	}
	if err := ws.plan.Forward(ws.fb, ws.b); err != nil {
		return fmt.Errorf("conv: forward FFT failed: %w", err)
	}

	// A * conj(B)
	for i := range ws.fa {
		fb := ws.fb[i]
		ws.fa[i] *= complex(real(fb), -imag(fb))
	}

	if err := ws.plan.Inverse(ws.a, ws.fa); err != nil {
		return fmt.Errorf("conv: inverse FFT failed: %w", err)
	}

	// Circular result: non-negative lags at the front, negative lags wrap
	// around to the end.
	m := c.lenB
	for i := 0; i < c.lenA; i++ {
		dst[m-1+i] = real(ws.a[i])
	}
	for i := 0; i < m-1; i++ {
		dst[i] = real(ws.a[c.fftSize-m+1+i])
	}

	return nil
}

func (c *Correlator) acquire() (*workspace, error) {
	if ws, ok := c.pool.Get().(*workspace); ok && ws != nil {
		return ws, nil
	}

	plan, err := algofft.NewPlan64(c.fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	return &workspace{
		plan: plan,
		a:    make([]complex128, c.fftSize),
		b:    make([]complex128, c.fftSize),
		fa:   make([]complex128, c.fftSize),
		fb:   make([]complex128, c.fftSize),
	}, nil
}

// getWorkspacePool returns the pool for the given FFT size, creating it if needed.
func getWorkspacePool(fftSize int) *sync.Pool {
	workspacePoolsMu.RLock()
	pool, ok := workspacePools[fftSize]
	workspacePoolsMu.RUnlock()

	if ok {
		return pool
	}

	workspacePoolsMu.Lock()
	defer workspacePoolsMu.Unlock()

	if pool, ok := workspacePools[fftSize]; ok {
		return pool
	}

	pool = &sync.Pool{}
	workspacePools[fftSize] = pool

	return pool
}

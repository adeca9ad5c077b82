// Package parallel provides the chunked worker loops the cpu kernels use.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too
// small. Each index is visited exactly once; f must not assume any ordering
// between indices.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForRows runs f once per row of a (rows, cols) iteration space. Rows are
// the unit of distribution, so f may safely write anywhere within its row.
func ForRows(rows, cols int, f func(row int), cfg Config) {
	// Weight the chunk decision by total work, not row count.
	if !cfg.Enabled || rows*cols < cfg.MinChunkSize {
		for r := 0; r < rows; r++ {
			f(r)
		}
		return
	}
	seq := cfg
	seq.MinChunkSize = 1
	For(rows, f, seq)
}

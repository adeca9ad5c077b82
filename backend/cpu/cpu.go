// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/weft-ml/weft/internal/backend/cpu"
	"github.com/weft-ml/weft/tensor"
)

// Backend represents the CPU backend implementation.
//
// The CPU backend provides pure Go implementations of every kernel the
// graph operations need, parallelized across cores where the work is large
// enough to pay for it.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/weft-ml/weft/backend/cpu"
//	    "github.com/weft-ml/weft/ops"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    relu := ops.NewReLU("act", backend)
//	    _ = relu
//	}
func New() *Backend {
	return internalcpu.New()
}

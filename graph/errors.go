// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package graph

import (
	"github.com/weft-ml/weft/internal/graph"
)

// Structured error types surfaced during function construction and replay.
// All unwrap cleanly through errors.As.

// CycleError reports a dependency cycle found during graph mapping.
type CycleError = graph.CycleError

// DisconnectedError reports a node input that is neither computable from
// the declared inputs nor itself declared.
type DisconnectedError = graph.DisconnectedError

// DuplicateNameError reports two operations sharing one name within a
// captured graph.
type DuplicateNameError = graph.DuplicateNameError

// StructureError reports a provided nested input structure that does not
// match the recorded one.
type StructureError = graph.StructureError

// RankError reports a provided tensor whose rank differs from the recorded
// input spec.
type RankError = graph.RankError

// ShapeError reports a known dimension mismatch between a provided tensor
// and the recorded input spec.
type ShapeError = graph.ShapeError

// ArityError reports an operation returning a different number of outputs
// than its application recorded.
type ArityError = graph.ArityError

// UnresolvedOutputError reports declared outputs that replay could not
// compute.
type UnresolvedOutputError = graph.UnresolvedOutputError

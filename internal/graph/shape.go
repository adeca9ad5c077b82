package graph

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/weft-ml/weft/internal/tensor"
)

// DimUnknown marks a dimension whose size is only known at execution time.
const DimUnknown = -1

// Shape is a symbolic tensor shape: an ordered list of dimensions where each
// entry is either a positive size or DimUnknown. Concrete tensors use
// tensor.Shape, which never carries unknowns.
type Shape []int

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Validate checks that every dimension is positive or DimUnknown.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 && dim != DimUnknown {
			return errors.Errorf("invalid dimension at index %d: %d (must be > 0 or unknown)", i, dim)
		}
	}
	return nil
}

// IsFullyDefined reports whether the shape has no unknown dimensions.
func (s Shape) IsFullyDefined() bool {
	for _, dim := range s {
		if dim == DimUnknown {
			return false
		}
	}
	return true
}

// Equal checks exact elementwise equality; unknown dims only equal unknown
// dims.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// CompatibleWith reports whether two shapes could describe the same tensor:
// equal rank, and every pair of known dimensions equal. Unknown dims match
// anything.
func (s Shape) CompatibleWith(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != DimUnknown && other[i] != DimUnknown && s[i] != other[i] {
			return false
		}
	}
	return true
}

// MergeWith combines two compatible shapes into the most specific one,
// taking the known dimension wherever either side has one.
func (s Shape) MergeWith(other Shape) (Shape, error) {
	if !s.CompatibleWith(other) {
		return nil, errors.Errorf("shapes %s and %s are incompatible", s, other)
	}
	merged := s.Clone()
	for i := range merged {
		if merged[i] == DimUnknown {
			merged[i] = other[i]
		}
	}
	return merged, nil
}

// Concrete converts to a concrete tensor shape; errors if any dimension is
// unknown.
func (s Shape) Concrete() (tensor.Shape, error) {
	if !s.IsFullyDefined() {
		return nil, errors.Errorf("shape %s has unknown dimensions", s)
	}
	return tensor.Shape(s.Clone()), nil
}

// FromConcrete wraps a concrete tensor shape as a symbolic one.
func FromConcrete(s tensor.Shape) Shape {
	return Shape(s.Clone())
}

// String renders the shape with "?" for unknown dims, e.g. "[? 4]".
func (s Shape) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, dim := range s {
		if i > 0 {
			b.WriteByte(' ')
		}
		if dim == DimUnknown {
			b.WriteByte('?')
		} else {
			b.WriteString(strconv.Itoa(dim))
		}
	}
	b.WriteByte(']')
	return b.String()
}

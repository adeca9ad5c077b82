package cpu

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// SegmentSum sums rows of data into numSegments buckets selected by the 1D
// segmentIDs tensor. Rows with negative ids are dropped; ids at or above
// numSegments panic. Segments nothing maps to stay zero.
func (cpu *CPUBackend) SegmentSum(data, segmentIDs *tensor.RawTensor, numSegments int) *tensor.RawTensor {
	shape := data.Shape()
	if len(shape) == 0 {
		panic("segmentsum: data must have at least one dimension")
	}
	idShape := segmentIDs.Shape()
	if len(idShape) != 1 {
		panic(fmt.Sprintf("segmentsum: segment ids must be 1D, got %dD", len(idShape)))
	}
	if idShape[0] != shape[0] {
		panic(fmt.Sprintf("segmentsum: %d segment ids for %d data rows", idShape[0], shape[0]))
	}
	if numSegments <= 0 {
		panic(fmt.Sprintf("segmentsum: numSegments must be positive, got %d", numSegments))
	}

	outShape := shape.Clone()
	outShape[0] = numSegments
	result, err := tensor.NewRaw(outShape, data.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("segmentsum: %v", err))
	}

	ids := segmentIDsAsInts(segmentIDs)
	rowSize := shape.NumElements() / shape[0]

	switch data.DType() {
	case tensor.Float32:
		segmentSumRows(result.AsFloat32(), data.AsFloat32(), ids, numSegments, rowSize)
	case tensor.Float64:
		segmentSumRows(result.AsFloat64(), data.AsFloat64(), ids, numSegments, rowSize)
	case tensor.Int32:
		segmentSumRows(result.AsInt32(), data.AsInt32(), ids, numSegments, rowSize)
	case tensor.Int64:
		segmentSumRows(result.AsInt64(), data.AsInt64(), ids, numSegments, rowSize)
	default:
		panic(fmt.Sprintf("segmentsum: unsupported dtype %s", data.DType()))
	}
	return result
}

// segmentIDsAsInts widens the id tensor to a plain int slice.
func segmentIDsAsInts(t *tensor.RawTensor) []int {
	switch t.DType() {
	case tensor.Int32:
		src := t.AsInt32()
		ids := make([]int, len(src))
		for i, v := range src {
			ids[i] = int(v)
		}
		return ids
	case tensor.Int64:
		src := t.AsInt64()
		ids := make([]int, len(src))
		for i, v := range src {
			ids[i] = int(v)
		}
		return ids
	default:
		panic(fmt.Sprintf("segmentsum: segment ids must be int32 or int64, got %s", t.DType()))
	}
}

func segmentSumRows[T numeric](dst, src []T, ids []int, numSegments, rowSize int) {
	for r, id := range ids {
		if id < 0 {
			continue
		}
		if id >= numSegments {
			panic(fmt.Sprintf("segmentsum: segment id %d out of range [0, %d)", id, numSegments))
		}
		out := dst[id*rowSize : (id+1)*rowSize]
		row := src[r*rowSize : (r+1)*rowSize]
		for i, v := range row {
			out[i] += v
		}
	}
}

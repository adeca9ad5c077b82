package cpu

import (
	"fmt"
	"sort"

	"github.com/weft-ml/weft/internal/tensor"
)

// TopK returns the k largest values and their int64 indices along the last
// dimension. When sorted is true values descend within each row; otherwise
// the selected entries come back in index order. Ties resolve to the lower
// index.
func (cpu *CPUBackend) TopK(x *tensor.RawTensor, k int, sorted bool) (*tensor.RawTensor, *tensor.RawTensor) {
	shape := x.Shape()
	if len(shape) == 0 {
		panic("topk: input must have at least one dimension")
	}
	classes := shape[len(shape)-1]
	if k < 1 || k > classes {
		panic(fmt.Sprintf("topk: k=%d out of range [1, %d]", k, classes))
	}

	outShape := shape.Clone()
	outShape[len(outShape)-1] = k
	values, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("topk: %v", err))
	}
	indices, err := tensor.NewRaw(outShape, tensor.Int64, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("topk: %v", err))
	}

	rows := shape.NumElements() / classes
	switch x.DType() {
	case tensor.Float32:
		topKRows(values.AsFloat32(), indices.AsInt64(), x.AsFloat32(), rows, classes, k, sorted)
	case tensor.Float64:
		topKRows(values.AsFloat64(), indices.AsInt64(), x.AsFloat64(), rows, classes, k, sorted)
	case tensor.Int32:
		topKRows(values.AsInt32(), indices.AsInt64(), x.AsInt32(), rows, classes, k, sorted)
	case tensor.Int64:
		topKRows(values.AsInt64(), indices.AsInt64(), x.AsInt64(), rows, classes, k, sorted)
	default:
		panic(fmt.Sprintf("topk: unsupported dtype %s", x.DType()))
	}
	return values, indices
}

func topKRows[T numeric](vals []T, idxs []int64, src []T, rows, classes, k int, sorted bool) {
	order := make([]int, classes)
	for r := 0; r < rows; r++ {
		row := src[r*classes : (r+1)*classes]
		for i := range order {
			order[i] = i
		}
		// Stable sort keeps equal values in index order.
		sort.SliceStable(order, func(a, b int) bool {
			return row[order[a]] > row[order[b]]
		})
		top := order[:k]
		if !sorted {
			sort.Ints(top)
		}
		for i, j := range top {
			vals[r*k+i] = row[j]
			idxs[r*k+i] = int64(j)
		}
	}
}

// InTopK reports, for each row of predictions, whether the target class's
// score is within the top k scores. Ties with the k-th score count as in.
// Out-of-range targets and NaN target scores are never in.
func (cpu *CPUBackend) InTopK(targets, predictions *tensor.RawTensor, k int) *tensor.RawTensor {
	tShape := targets.Shape()
	if len(tShape) != 1 {
		panic(fmt.Sprintf("intopk: targets must be 1D, got %dD", len(tShape)))
	}
	pShape := predictions.Shape()
	if len(pShape) != 2 {
		panic(fmt.Sprintf("intopk: predictions must be 2D, got %dD", len(pShape)))
	}
	if tShape[0] != pShape[0] {
		panic(fmt.Sprintf("intopk: %d targets for %d prediction rows", tShape[0], pShape[0]))
	}
	if k < 1 {
		panic(fmt.Sprintf("intopk: k must be positive, got %d", k))
	}

	result, err := tensor.NewRaw(tensor.Shape{pShape[0]}, tensor.Bool, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("intopk: %v", err))
	}

	classes := pShape[1]
	ids := targetClasses(targets)
	switch predictions.DType() {
	case tensor.Float32:
		inTopKRows(result.AsBool(), predictions.AsFloat32(), ids, classes, k)
	case tensor.Float64:
		inTopKRows(result.AsBool(), predictions.AsFloat64(), ids, classes, k)
	default:
		panic(fmt.Sprintf("intopk: unsupported dtype %s (only float32/float64 supported)", predictions.DType()))
	}
	return result
}

// targetClasses widens the class index tensor to a plain int slice.
func targetClasses(t *tensor.RawTensor) []int {
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
		panic(fmt.Sprintf("intopk: targets must be int32 or int64, got %s", t.DType()))
	}
}

func inTopKRows[T numeric](out []bool, preds []T, targets []int, classes, k int) {
	for r, target := range targets {
		// out is zero-initialized, so skipped rows report false.
		if target < 0 || target >= classes {
			continue
		}
		row := preds[r*classes : (r+1)*classes]
		t := row[target]
		if t != t {
			// NaN never ranks.
			continue
		}
		greater := 0
		for _, v := range row {
			if v > t {
				greater++
			}
		}
		out[r] = greater < k
	}
}

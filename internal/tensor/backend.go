package tensor

// Backend defines the interface compute backends implement. The graph engine
// treats kernels as opaque callables: it never inspects results beyond shape
// and dtype, and backends are free to parallelize internally.
//
// Kernels panic on programmer error (shape or dtype misuse); such conditions
// are bugs in the calling operation, not runtime failures.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor

	// Element-wise math
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	ReLU(x *RawTensor) *RawTensor

	// Reductions
	Sum(x *RawTensor) *RawTensor                           // total sum (scalar result)
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor // sum along dimension
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor // max along dimension

	// LogSumExp computes log(sum(exp(x))) along a dimension, shifted by the
	// running maximum for numerical stability.
	LogSumExp(x *RawTensor, dim int, keepDim bool) *RawTensor

	// SegmentSum sums rows of data into numSegments buckets selected by
	// segmentIDs. Negative ids drop the row; ids >= numSegments panic.
	SegmentSum(data, segmentIDs *RawTensor, numSegments int) *RawTensor

	// TopK returns the k largest values and their indices along the last
	// dimension. When sorted is true values descend within each row.
	TopK(x *RawTensor, k int, sorted bool) (*RawTensor, *RawTensor)

	// InTopK reports for each row whether the target class's score is within
	// the top k prediction scores (ties count as in).
	InTopK(targets, predictions *RawTensor, k int) *RawTensor

	// Manipulation operations
	Concat(tensors []*RawTensor, dim int) *RawTensor
	Reshape(t *RawTensor, newShape Shape) *RawTensor

	// Metadata
	Name() string
	Device() Device
}

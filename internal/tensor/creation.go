package tensor

import "fmt"

// FromSlice creates a CPU tensor from a Go slice. The slice length must
// match the shape's element count; data is copied, not aliased.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	var dummy T
	dtype := inferDataType(dummy)

	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}

	raw, err := NewRaw(shape, dtype, CPU)
	if err != nil {
		return nil, err
	}

	switch src := any(data).(type) {
	case []float32:
		copy(raw.AsFloat32(), src)
	case []float64:
		copy(raw.AsFloat64(), src)
	case []int32:
		copy(raw.AsInt32(), src)
	case []int64:
		copy(raw.AsInt64(), src)
	case []uint8:
		copy(raw.AsUint8(), src)
	case []bool:
		copy(raw.AsBool(), src)
	}

	return raw, nil
}

// Zeros creates a CPU tensor filled with zeros.
func Zeros(shape Shape, dtype DataType) *RawTensor {
	raw, err := NewRaw(shape, dtype, CPU)
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return raw
}

// Ones creates a CPU tensor filled with ones.
func Ones(shape Shape, dtype DataType) *RawTensor {
	raw := Zeros(shape, dtype)
	switch dtype {
	case Float32:
		fill(raw.AsFloat32(), float32(1))
	case Float64:
		fill(raw.AsFloat64(), float64(1))
	case Int32:
		fill(raw.AsInt32(), int32(1))
	case Int64:
		fill(raw.AsInt64(), int64(1))
	case Uint8:
		fill(raw.AsUint8(), uint8(1))
	case Bool:
		fill(raw.AsBool(), true)
	}
	return raw
}

// Full creates a CPU tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full(tensor.Shape{3, 3}, float32(3.14))
func Full[T DType](shape Shape, value T) *RawTensor {
	var dummy T
	raw := Zeros(shape, inferDataType(dummy))

	switch v := any(value).(type) {
	case float32:
		fill(raw.AsFloat32(), v)
	case float64:
		fill(raw.AsFloat64(), v)
	case int32:
		fill(raw.AsInt32(), v)
	case int64:
		fill(raw.AsInt64(), v)
	case uint8:
		fill(raw.AsUint8(), v)
	case bool:
		fill(raw.AsBool(), v)
	}
	return raw
}

func fill[T DType](dst []T, v T) {
	for i := range dst {
		dst[i] = v
	}
}

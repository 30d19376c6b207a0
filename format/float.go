package format

// Float constrains the sample types the pipeline operates on.
// DTypeOf maps a concrete instantiation back to its header tag.
type Float interface {
	~float32 | ~float64
}

// DTypeOf returns the header dtype tag for the sample type T.
func DTypeOf[T Float]() DType {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return DTypeF4
	}

	return DTypeF8
}

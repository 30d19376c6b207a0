package pool

import "sync"

// Slice pools for the pipeline's transient workspaces: predictor tile
// buffers and quant-code planes. Each Get returns a
// slice of exactly the requested length plus a cleanup func that must be
// called (typically deferred) to return the backing array to the pool.
var (
	uint16SlicePool = sync.Pool{
		New: func() any { return &[]uint16{} },
	}
	uint32SlicePool = sync.Pool{
		New: func() any { return &[]uint32{} },
	}
	int32SlicePool = sync.Pool{
		New: func() any { return &[]int32{} },
	}
)

// GetUint16Slice retrieves a uint16 slice of the given length from the pool.
func GetUint16Slice(size int) ([]uint16, func()) {
	ptr, _ := uint16SlicePool.Get().(*[]uint16)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint16, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { uint16SlicePool.Put(ptr) }
}

// GetUint32Slice retrieves a uint32 slice of the given length from the pool.
func GetUint32Slice(size int) ([]uint32, func()) {
	ptr, _ := uint32SlicePool.Get().(*[]uint32)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint32, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { uint32SlicePool.Put(ptr) }
}

// GetInt32Slice retrieves an int32 slice of the given length from the pool.
func GetInt32Slice(size int) ([]int32, func()) {
	ptr, _ := int32SlicePool.Get().(*[]int32)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]int32, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { int32SlicePool.Put(ptr) }
}

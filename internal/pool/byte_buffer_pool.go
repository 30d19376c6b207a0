package pool

import "sync"

// ByteBuffer is a reusable append-only byte buffer handed out by the pool.
// Huffman chunk workers each hold one while bit-packing their chunk.
type ByteBuffer struct {
	buf []byte
}

// Bytes returns the accumulated bytes. The slice aliases the internal
// buffer and is valid until the buffer is reset or returned to the pool.
func (b *ByteBuffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of accumulated bytes.
func (b *ByteBuffer) Len() int {
	return len(b.buf)
}

// Reset truncates the buffer without releasing its backing array.
func (b *ByteBuffer) Reset() {
	b.buf = b.buf[:0]
}

// AppendByte appends one byte.
func (b *ByteBuffer) AppendByte(c byte) {
	b.buf = append(b.buf, c)
}

// Append appends a byte slice.
func (b *ByteBuffer) Append(p []byte) {
	b.buf = append(b.buf, p...)
}

var byteBufferPool = sync.Pool{
	New: func() any { return &ByteBuffer{buf: make([]byte, 0, 4096)} },
}

// GetByteBuffer retrieves an empty ByteBuffer from the pool.
func GetByteBuffer() *ByteBuffer {
	buf, _ := byteBufferPool.Get().(*ByteBuffer)
	buf.Reset()

	return buf
}

// PutByteBuffer returns a ByteBuffer to the pool. The caller must not use
// the buffer or any slice obtained from Bytes() afterwards.
func PutByteBuffer(b *ByteBuffer) {
	if b == nil {
		return
	}
	byteBufferPool.Put(b)
}

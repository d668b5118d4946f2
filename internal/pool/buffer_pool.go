package pool

import (
	"sync"

	"github.com/arloliu/go-fins/fins"
)

// DatagramSize is the size of every buffer handed out by GetBuffer.
// It holds the largest FINS frame plus one byte, so a read that fills the buffer
// reveals an oversized datagram.
const DatagramSize = fins.MaxFrameSize + 1

var bufferPool = sync.Pool{New: func() any { return new([DatagramSize]byte) }}

// GetBuffer returns a datagram receive buffer from the pool.
//
// Return back the buffer to the pool with PutBuffer.
func GetBuffer() *[DatagramSize]byte {
	buf, _ := bufferPool.Get().(*[DatagramSize]byte) // only *[DatagramSize]byte is put into the pool
	if buf == nil {
		buf = new([DatagramSize]byte)
	}

	return buf
}

// PutBuffer returns buf to the pool.
//
// buf and any slice derived from it cannot be accessed after returning to the pool.
func PutBuffer(buf *[DatagramSize]byte) {
	if buf == nil {
		return
	}
	bufferPool.Put(buf)
}

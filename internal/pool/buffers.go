// Package pool provides sync.Pool-backed arena allocation for the Chunk
// Pipeline: reusable record-batch slabs and byte buffers, so a large zone
// export doesn't force a fresh allocation per chunk. It generalises the
// teacher's dns.Msg/wire-buffer pools (internal/pool in the source) from
// DNS message reuse to record.Record batch reuse; the tiered byte-buffer
// pools below are unchanged in shape, just relabeled for the new domain
// (output buffering instead of UDP/EDNS0/wire-message sizing).
package pool

import (
	"sync"

	"github.com/dnsscience/dnsriskscan/internal/record"
)

const (
	// SmallBufferSize/MediumBufferSize/LargeBufferSize size the output
	// write-buffer tiers; internal/report's streaming CSV writer uses the
	// medium tier.
	SmallBufferSize  = 512
	MediumBufferSize = 4096
	LargeBufferSize  = 65536

	// defaultChunkCapacity sizes a freshly allocated record slab when the
	// pool is empty; PutChunk does not pool slabs with less capacity.
	defaultChunkCapacity = 1000
)

// ChunkPool reuses []record.Record slabs between pipeline chunks, cut down
// from the teacher's *dns.Msg pool: a chunk is cleared to zero length (not
// zeroed byte-by-byte) before reuse, same discipline as the source's
// "reset before return" rule.
var ChunkPool = sync.Pool{
	New: func() interface{} {
		s := make([]record.Record, 0, defaultChunkCapacity)
		return &s
	},
}

// GetChunk returns a record slab with at least defaultChunkCapacity spare
// capacity and zero length.
func GetChunk() []record.Record {
	p := ChunkPool.Get().(*[]record.Record)
	return (*p)[:0]
}

// PutChunk returns a slab to the pool after clearing it to zero length.
// Slabs below defaultChunkCapacity aren't pooled, to avoid the pool slowly
// filling with runts from short final chunks.
func PutChunk(chunk []record.Record) {
	if cap(chunk) < defaultChunkCapacity {
		return
	}
	chunk = chunk[:0]
	ChunkPool.Put(&chunk)
}

// SmallBufferPool/MediumBufferPool/LargeBufferPool are the byte-buffer
// tiers; internal/report's CSVWriter draws from MediumBufferPool.
var SmallBufferPool = sync.Pool{New: func() interface{} { buf := make([]byte, SmallBufferSize); return &buf }}
var MediumBufferPool = sync.Pool{New: func() interface{} { buf := make([]byte, MediumBufferSize); return &buf }}
var LargeBufferPool = sync.Pool{New: func() interface{} { buf := make([]byte, LargeBufferSize); return &buf }}

func GetSmallBuffer() []byte {
	bufPtr := SmallBufferPool.Get().(*[]byte)
	return (*bufPtr)[:SmallBufferSize]
}

func PutSmallBuffer(buf []byte) {
	if cap(buf) < SmallBufferSize {
		return
	}
	buf = buf[:cap(buf)]
	SmallBufferPool.Put(&buf)
}

func GetMediumBuffer() []byte {
	bufPtr := MediumBufferPool.Get().(*[]byte)
	return (*bufPtr)[:MediumBufferSize]
}

func PutMediumBuffer(buf []byte) {
	if cap(buf) < MediumBufferSize {
		return
	}
	buf = buf[:cap(buf)]
	MediumBufferPool.Put(&buf)
}

func GetLargeBuffer() []byte {
	bufPtr := LargeBufferPool.Get().(*[]byte)
	return (*bufPtr)[:LargeBufferSize]
}

func PutLargeBuffer(buf []byte) {
	if cap(buf) < LargeBufferSize {
		return
	}
	buf = buf[:cap(buf)]
	LargeBufferPool.Put(&buf)
}

// GetBuffer selects the smallest tier that satisfies size.
func GetBuffer(size int) []byte {
	switch {
	case size <= SmallBufferSize:
		return GetSmallBuffer()
	case size <= MediumBufferSize:
		return GetMediumBuffer()
	default:
		return GetLargeBuffer()
	}
}

// PutBuffer returns buf to whichever tier its capacity matches exactly;
// odd-sized buffers (from a one-off large allocation) are left for GC.
func PutBuffer(buf []byte) {
	switch cap(buf) {
	case SmallBufferSize:
		PutSmallBuffer(buf)
	case MediumBufferSize:
		PutMediumBuffer(buf)
	case LargeBufferSize:
		PutLargeBuffer(buf)
	}
}

// ResetPools discards every pool's contents, for tests that need a clean
// slate.
func ResetPools() {
	ChunkPool = sync.Pool{New: func() interface{} { s := make([]record.Record, 0, defaultChunkCapacity); return &s }}
	SmallBufferPool = sync.Pool{New: func() interface{} { buf := make([]byte, SmallBufferSize); return &buf }}
	MediumBufferPool = sync.Pool{New: func() interface{} { buf := make([]byte, MediumBufferSize); return &buf }}
	LargeBufferPool = sync.Pool{New: func() interface{} { buf := make([]byte, LargeBufferSize); return &buf }}
}

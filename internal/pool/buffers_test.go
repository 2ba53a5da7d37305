package pool

import (
	"testing"

	"github.com/dnsscience/dnsriskscan/internal/record"
)

func TestChunkPool_ReuseClearsLength(t *testing.T) {
	chunk := GetChunk()
	if len(chunk) != 0 {
		t.Fatalf("GetChunk() len = %d, want 0", len(chunk))
	}
	if cap(chunk) < defaultChunkCapacity {
		t.Fatalf("GetChunk() cap = %d, want >= %d", cap(chunk), defaultChunkCapacity)
	}

	chunk = append(chunk, record.Record{Name: "example.com"})
	PutChunk(chunk)

	chunk2 := GetChunk()
	if len(chunk2) != 0 {
		t.Errorf("reused chunk not cleared: len = %d, want 0", len(chunk2))
	}
}

func TestPutChunk_UndersizedNotPooled(t *testing.T) {
	small := make([]record.Record, 0, 1)
	PutChunk(small) // must not panic
}

func TestSmallBufferPool(t *testing.T) {
	buf := GetSmallBuffer()
	if len(buf) != SmallBufferSize {
		t.Errorf("buffer size = %d, want %d", len(buf), SmallBufferSize)
	}
	PutSmallBuffer(buf)

	buf2 := GetSmallBuffer()
	if len(buf2) != SmallBufferSize {
		t.Errorf("buffer size = %d, want %d", len(buf2), SmallBufferSize)
	}
}

func TestMediumBufferPool(t *testing.T) {
	buf := GetMediumBuffer()
	if len(buf) != MediumBufferSize {
		t.Errorf("buffer size = %d, want %d", len(buf), MediumBufferSize)
	}
	PutMediumBuffer(buf)

	buf2 := GetMediumBuffer()
	if len(buf2) != MediumBufferSize {
		t.Errorf("buffer size = %d, want %d", len(buf2), MediumBufferSize)
	}
}

func TestLargeBufferPool(t *testing.T) {
	buf := GetLargeBuffer()
	if len(buf) != LargeBufferSize {
		t.Errorf("buffer size = %d, want %d", len(buf), LargeBufferSize)
	}
	PutLargeBuffer(buf)

	buf2 := GetLargeBuffer()
	if len(buf2) != LargeBufferSize {
		t.Errorf("buffer size = %d, want %d", len(buf2), LargeBufferSize)
	}
}

func TestGetBuffer(t *testing.T) {
	tests := []struct {
		size        int
		expectedCap int
	}{
		{100, SmallBufferSize},
		{512, SmallBufferSize},
		{1024, MediumBufferSize},
		{4096, MediumBufferSize},
		{8192, LargeBufferSize},
		{65535, LargeBufferSize},
	}

	for _, tt := range tests {
		buf := GetBuffer(tt.size)
		if cap(buf) != tt.expectedCap {
			t.Errorf("GetBuffer(%d) cap = %d, want %d", tt.size, cap(buf), tt.expectedCap)
		}
		PutBuffer(buf)
	}
}

func TestPutBuffer(t *testing.T) {
	small := GetSmallBuffer()
	PutBuffer(small)

	medium := GetMediumBuffer()
	PutBuffer(medium)

	large := GetLargeBuffer()
	PutBuffer(large)

	weird := make([]byte, 1234)
	PutBuffer(weird) // must not panic
}

func TestPutSmallBuffer_Undersized(t *testing.T) {
	small := make([]byte, 100)
	PutSmallBuffer(small) // must not panic or get pooled
}

func TestResetPools(t *testing.T) {
	chunk := GetChunk()
	buf := GetSmallBuffer()

	ResetPools()

	chunk2 := GetChunk()
	if cap(chunk2) < defaultChunkCapacity {
		t.Error("GetChunk() failed after ResetPools")
	}

	buf2 := GetSmallBuffer()
	if len(buf2) != SmallBufferSize {
		t.Error("GetSmallBuffer() failed after ResetPools")
	}

	PutChunk(chunk)
	PutChunk(chunk2)
	PutSmallBuffer(buf)
	PutSmallBuffer(buf2)
}

func BenchmarkChunkPool(b *testing.B) {
	for i := 0; i < b.N; i++ {
		chunk := GetChunk()
		chunk = append(chunk, record.Record{Name: "example.com"})
		PutChunk(chunk)
	}
}

func BenchmarkSmallBufferPool(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buf := GetSmallBuffer()
		PutSmallBuffer(buf)
	}
}

func BenchmarkMediumBufferPool(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buf := GetMediumBuffer()
		PutMediumBuffer(buf)
	}
}

func BenchmarkLargeBufferPool(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buf := GetLargeBuffer()
		PutLargeBuffer(buf)
	}
}

package bitio

import "testing"

func FuzzAppendUERoundTrip(f *testing.F) {
	f.Add(uint32(0))
	f.Add(uint32(1))
	f.Add(uint32(255))
	f.Add(uint32(1 << 30))

	f.Fuzz(func(t *testing.T, v uint32) {
		if v == ^uint32(0) {
			return // v+1 overflows the prefix computation
		}
		w := NewWriter(8)
		w.AppendUE(v)
		w.ByteAlign()

		r := NewReader(w.Bytes())
		if got := r.ReadUE(); got != v {
			t.Fatalf("round trip: wrote %d, read %d", v, got)
		}
	})
}

func FuzzAppendSERoundTrip(f *testing.F) {
	f.Add(int32(0))
	f.Add(int32(-1))
	f.Add(int32(1 << 20))

	f.Fuzz(func(t *testing.T, v int32) {
		if v == -1<<31 {
			return // |2v| exceeds the 32-bit code space
		}
		w := NewWriter(8)
		w.AppendSE(v)
		w.ByteAlign()

		r := NewReader(w.Bytes())
		if got := r.ReadSE(); got != v {
			t.Fatalf("round trip: wrote %d, read %d", v, got)
		}
	})
}

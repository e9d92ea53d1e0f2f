package formats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWalkJPEG(t *testing.T) {
	data := []byte{
		0xFF, 0xD8, // SOI
		0xFF, 0xE0, 0x00, 0x04, 0xAA, 0xBB, // APP0
		0xFF, 0xFF, 0xE1, 0x00, 0x03, 0xCC, // fill byte, APP1
		0xFF, 0xD0, // RST0
		0xFF, 0xFE, 0x00, 0x02, // COM, empty
		0xFF, 0xDA, 0x00, 0x02, // SOS
		0xFF, 0xE2, 0x00, 0x02, // after SOS, not reached
	}

	var got []Segment
	WalkJPEG(data, func(s Segment) bool {
		got = append(got, s)
		return true
	})

	want := []Segment{
		{Marker: 0xE0, Data: []byte{0xAA, 0xBB}},
		{Marker: 0xE1, Data: []byte{0xCC}},
		{Marker: 0xFE, Data: []byte{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkJPEG_Truncated(t *testing.T) {
	tests := [][]byte{
		nil,
		{0xFF},
		{0x89, 0x50},
		{0xFF, 0xD8, 0xFF, 0xE1, 0x00, 0x40, 0x01},
		{0xFF, 0xD8, 0xFF, 0xE1, 0x00},
	}
	for _, data := range tests {
		WalkJPEG(data, func(s Segment) bool {
			t.Errorf("WalkJPEG(% x) reported segment %x", data, s.Marker)
			return true
		})
	}
}

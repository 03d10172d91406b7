/*
DESCRIPTION
  slice_test.go provides testing for slice.go.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package ffv1dec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{10, 2, 5},
		{11, 2, 6},
		{0, 4, 0},
		{1, 4, 1},
		{7, 7, 1},
	}
	for _, test := range tests {
		got := ceilDiv(test.a, test.b)
		if got != test.want {
			t.Errorf("ceilDiv(%d, %d) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

// TestCountSlicesSingleSlice builds one hand-crafted footer (no error
// correction) covering the whole buffer and checks its position/size are
// recovered correctly.
func TestCountSlicesSingleSlice(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE} // 5 bytes of "slice data".
	footer := []byte{
		0x00, 0x00, 0x05, // slice_size = 5
		0x00, // error_status = 0
	}
	buf := append(append([]byte{}, payload...), footer...)

	infos, err := countSlices(buf, false)
	if err != nil {
		t.Fatalf("countSlices: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("got %d slices, want 1", len(infos))
	}
	if infos[0].Pos != 0 {
		t.Errorf("Pos = %d, want 0", infos[0].Pos)
	}
	if infos[0].Size != 5 {
		t.Errorf("Size = %d, want 5", infos[0].Size)
	}
	if infos[0].ErrorStatus != 0 {
		t.Errorf("ErrorStatus = %d, want 0", infos[0].ErrorStatus)
	}
}

// TestCountSlicesMultipleSlices builds two consecutive slices and checks
// both are recovered in forward order with the right offsets.
func TestCountSlicesMultipleSlices(t *testing.T) {
	slice0 := append([]byte{0x01, 0x02, 0x03}, 0x00, 0x00, 0x03, 0x00)
	slice1 := append([]byte{0x04, 0x05}, 0x00, 0x00, 0x02, 0x07)
	buf := append(append([]byte{}, slice0...), slice1...)

	infos, err := countSlices(buf, false)
	if err != nil {
		t.Fatalf("countSlices: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d slices, want 2", len(infos))
	}
	want := []SliceInfo{
		{Pos: 0, Size: 3, ErrorStatus: 0},
		{Pos: 7, Size: 2, ErrorStatus: 7},
	}
	if diff := cmp.Diff(want, infos); diff != "" {
		t.Errorf("countSlices mismatch (-want +got):\n%s", diff)
	}
}

// TestCountSlicesWithEC builds a single slice whose footer includes the
// extra 4-byte slice_crc_parity field ec enables.
func TestCountSlicesWithEC(t *testing.T) {
	payload := []byte{0x11, 0x22, 0x33, 0x44}
	footer := []byte{
		0x00, 0x00, 0x04, // slice_size = 4
		0x00,                   // error_status = 0
		0xDE, 0xAD, 0xBE, 0xEF, // slice_crc_parity (opaque to countSlices)
	}
	buf := append(append([]byte{}, payload...), footer...)

	infos, err := countSlices(buf, true)
	if err != nil {
		t.Fatalf("countSlices: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("got %d slices, want 1", len(infos))
	}
	if infos[0].Pos != 0 || infos[0].Size != 4 {
		t.Errorf("slice 0 = %+v, want {Pos:0 Size:4 ...}", infos[0])
	}
}

// TestCountSlicesInvalidFooter checks a buffer too short to contain even one
// footer is rejected.
func TestCountSlicesInvalidFooter(t *testing.T) {
	_, err := countSlices([]byte{0x00, 0x00}, false)
	if err == nil {
		t.Fatal("expected an error for a too-short buffer")
	}
}

/*
DESCRIPTION
  decode_test.go provides testing for decode.go.

  A full DecodeFrame call requires a valid range-coded configuration record
  and slice header, which these tests do not attempt to hand-construct (see
  DESIGN.md); coverage here is limited to New's input validation, which
  rejects malformed input before any entropy decoding is attempted.
  scenarios_test.go covers the Golomb-Rice sample path and the inter-frame
  state carry-over directly, at decodeSliceContentYUV/parseFooters, without
  needing a range-coded bitstream to drive them.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package ffv1dec

import "testing"

func TestNewRejectsZeroDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
	}{
		{"zero width", 0, 480},
		{"zero height", 640, 0},
		{"both zero", 0, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New([]byte{0x01, 0x02, 0x03}, test.width, test.height)
			if err == nil {
				t.Fatal("expected an error for invalid dimensions")
			}
			fe, ok := err.(*Error)
			if !ok {
				t.Fatalf("error type = %T, want *Error", err)
			}
			if fe.Kind != InvalidInputData {
				t.Errorf("Kind = %v, want InvalidInputData", fe.Kind)
			}
		})
	}
}

func TestNewRejectsEmptyRecord(t *testing.T) {
	_, err := New(nil, 640, 480)
	if err == nil {
		t.Fatal("expected an error for an empty configuration record")
	}
	fe, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if fe.Kind != InvalidInputData {
		t.Errorf("Kind = %v, want InvalidInputData", fe.Kind)
	}
}

// TestNewRejectsInvalidRecord checks a non-empty but CRC-invalid record is
// wrapped into an InvalidConfiguration error, not returned bare from
// ParseConfigRecord.
func TestNewRejectsInvalidRecord(t *testing.T) {
	_, err := New([]byte{0x01, 0x02, 0x03, 0x04}, 640, 480)
	if err == nil {
		t.Fatal("expected an error for an invalid configuration record")
	}
	fe, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if fe.Kind != InvalidConfiguration {
		t.Errorf("Kind = %v, want InvalidConfiguration", fe.Kind)
	}
}

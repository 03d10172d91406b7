/*
DESCRIPTION
  scenarios_test.go hand-assembles two small synthetic fixtures that a
  range-coded configuration record and slice header cannot cheaply provide:
  a Golomb-Rice run-mode trigger, and inter-frame adaptive-state carry-over.
  Both drive the real decode path rather than asserting against a mock.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package ffv1dec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestDecodeSliceContentYUVRunMode decodes a synthetic 2x2 YCbCr 4:4:4
// keyframe whose samples are all 128. A quantization table set with a single,
// all-zero bucket is used so every context index is 0 regardless of pixel
// value, which is exactly the run-mode trigger condition (see golomb.go's
// SG: "if context == 0 && g.runMode == 0"). The Golomb-Rice bitstream below
// is hand-derived against GetVLCSymbol/GetURGolomb's documented arithmetic
// rather than produced by an encoder, since none exists in the retrieved
// reference material (see DESIGN.md's decode.go entry); it is restricted to
// this package's own Golomb-Rice entry point (decodeSliceContentYUV) rather
// than a full DecodeFrame call, since a config record and slice header would
// additionally need a hand-built range-coded bitstream, which risks silently
// wrong carry propagation with no way to run the decoder to check it.
//
// Every plane's first sample needs a genuine coded value (its predictor is
// always 0 at a plane's top-left corner), decoded via the escape path of
// GetURGolomb; every other sample in the 2x2 image is flat against its
// predictor and so decodes via the plain run-continuation bit. Luma and Cb
// use distinct adaptive state (one per quantization role) and happen to
// share the same fresh initial state, so their bitstreams are identical;
// Cr reuses Cb's role (both are "chroma"), so its bitstream reflects the
// state Cb's decode left behind.
func TestDecodeSliceContentYUVRunMode(t *testing.T) {
	record := &ConfigRecord{
		BitsPerRawSample: 8,
		ColorspaceType:   ColorspaceYCbCr,
		// QuantTables is left at its zero value: every bucket maps to 0, so
		// getContext always returns 0 no matter what the neighbours are.
	}

	fullPlane := SlicePlane{Width: 2, Height: 2, Stride: 2, Quant: 0, Slot: 0}
	chroma := SlicePlane{Width: 2, Height: 2, Stride: 2, Quant: 1}
	cb, cr := chroma, chroma
	cb.Slot, cr.Slot = 1, 2

	s := &Slice{
		Header: SliceHeader{QuantTableSetIndex: []uint8{0, 0}},
		Planes: []SlicePlane{fullPlane, cb, cr},
		GolombState: [][]GolombState{
			{NewGolombState()}, // role 0: luma
			{NewGolombState()}, // role 1: chroma, shared by Cb and Cr
		},
	}

	buf := [][]uint8{
		make([]uint8, 4), // luma
		make([]uint8, 4), // Cb
		make([]uint8, 4), // Cr
	}

	// Per-plane bitstream: run-continue query bit (0 = terminate into level
	// coding), then GetVLCSymbol's coded value, repeated for the 3 remaining
	// samples as plain run-continuation bits (query bit 1, no further data).
	//
	//   luma/Cb (fresh GolombState, k=2): escape (12 zero unary bits, then
	//   the 8-bit literal 243) decodes to a level of 128.
	//   Cr (state left behind by Cb's decode, k=7): a direct 2-bit unary
	//   prefix plus a 7-bit literal of 124 decodes to the same level of 128.
	golombBuf := []byte{
		0x00, 0x07, 0x9F, // luma: 0 000000000000 11110011 1 1 1
		0x00, 0x07, 0x9F, // Cb: identical, same fresh starting state
		0x3F, 0x38, // Cr: 0 01 1111100 1 1 1, padded to a byte boundary
	}
	gc := NewGolombCoder(golombBuf)

	// The range coder is never consulted: every sample in this fixture goes
	// through the Golomb-Rice path (gc != nil), and rc is only read from the
	// non-Golomb branch of decodeLine.
	decodeSliceContentYUV(s, record, nil, gc, buf)

	want := [][]uint8{
		{128, 128, 128, 128},
		{128, 128, 128, 128},
		{128, 128, 128, 128},
	}
	if diff := cmp.Diff(want, buf); diff != "" {
		t.Errorf("decodeSliceContentYUV run-mode fixture mismatch (-want +got):\n%s", diff)
	}
}

// TestParseFootersCarriesStateAcrossInterFrame checks the non-keyframe branch
// of parseFooters: an inter frame must reuse the preceding frame's per-slice
// adaptive state rather than reinitialising it, for both the range coder's
// per-context state and (when coder_type is Golomb-Rice) the Golomb-Rice
// adaptive state.
func TestParseFootersCarriesStateAcrossInterFrame(t *testing.T) {
	d := &Decoder{record: &ConfigRecord{CoderType: 0}}

	payload := []byte{0xAA, 0xBB}
	footer := []byte{0x00, 0x00, 0x02, 0x00} // slice_size=2, error_status=0
	buf := append(append([]byte{}, payload...), footer...)

	carriedState := [][][]uint8{{{1, 2, 3}}}
	carriedGolomb := [][]GolombState{{{Drift: 7, ErrorSum: 99, Bias: -3, Count: 42}}}

	// A keyframe never carries state over, regardless of what a stale
	// currentFrame happens to hold from a previous GOP.
	d.currentFrame.Keyframe = true
	d.currentFrame.Slices = []Slice{{State: carriedState, GolombState: carriedGolomb}}
	if err := d.parseFooters(buf); err != nil {
		t.Fatalf("keyframe parseFooters: %v", err)
	}
	if d.currentFrame.Slices[0].State != nil {
		t.Errorf("keyframe slice State = %v, want nil", d.currentFrame.Slices[0].State)
	}
	if d.currentFrame.Slices[0].GolombState != nil {
		t.Errorf("keyframe slice GolombState = %v, want nil", d.currentFrame.Slices[0].GolombState)
	}

	// Simulate decodeSlice having since decoded that keyframe, leaving
	// adapted state behind on the slice.
	d.currentFrame.Slices[0].State = carriedState
	d.currentFrame.Slices[0].GolombState = carriedGolomb

	d.currentFrame.Keyframe = false
	if err := d.parseFooters(buf); err != nil {
		t.Fatalf("inter frame parseFooters: %v", err)
	}
	if diff := cmp.Diff(carriedState, d.currentFrame.Slices[0].State); diff != "" {
		t.Errorf("inter frame did not carry State over (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(carriedGolomb, d.currentFrame.Slices[0].GolombState); diff != "" {
		t.Errorf("inter frame did not carry GolombState over (-want +got):\n%s", diff)
	}
}

// TestParseFootersOnlyCarriesGolombStateForCoderType0 checks that an inter
// frame coded with the range coder (coder_type != 0) carries its per-context
// State over but never touches GolombState, which stays nil since no
// Golomb-Rice decoding ever happens for that stream.
func TestParseFootersOnlyCarriesGolombStateForCoderType0(t *testing.T) {
	d := &Decoder{record: &ConfigRecord{CoderType: 2}}

	payload := []byte{0xAA, 0xBB}
	footer := []byte{0x00, 0x00, 0x02, 0x00}
	buf := append(append([]byte{}, payload...), footer...)

	carriedState := [][][]uint8{{{4, 5, 6}}}

	d.currentFrame.Keyframe = false
	d.currentFrame.Slices = []Slice{{State: carriedState}}
	if err := d.parseFooters(buf); err != nil {
		t.Fatalf("parseFooters: %v", err)
	}
	if diff := cmp.Diff(carriedState, d.currentFrame.Slices[0].State); diff != "" {
		t.Errorf("State not carried over (-want +got):\n%s", diff)
	}
	if d.currentFrame.Slices[0].GolombState != nil {
		t.Errorf("GolombState = %v, want nil for coder_type != 0", d.currentFrame.Slices[0].GolombState)
	}
}

/*
DESCRIPTION
  rangecoder_test.go provides testing for rangecoder.go.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package ffv1dec

import "testing"

// TestSetTableSymmetry checks the state-symmetry invariant SetTable relies
// on: zeroState[i] and oneState[256-i] sum to 256 for every non-edge state.
func TestSetTableSymmetry(t *testing.T) {
	c := NewRangeCoder([]byte{0, 0, 0, 0})
	for i := 1; i < 255; i++ {
		got := int(c.zeroState[i]) + int(c.oneState[256-i])
		if got != 256 {
			t.Errorf("state %d: zeroState[%d]+oneState[%d] = %d, want 256", i, i, 256-i, got)
		}
	}
}

// TestGetDoesNotPanic checks that decoding 100 bits from a freshly
// constructed coder over an all-zero buffer terminates without panicking.
func TestGetDoesNotPanic(t *testing.T) {
	c := NewRangeCoder(make([]byte, 64))
	state := byte(128)
	for i := 0; i < 100; i++ {
		c.Get(&state)
	}
}

// TestPosAdvancesMonotonically checks Pos never goes backward as bits are
// consumed.
func TestPosAdvancesMonotonically(t *testing.T) {
	c := NewRangeCoder(make([]byte, 64))
	state := [contextSize]byte{}
	for i := range state {
		state[i] = 128
	}
	last := c.Pos()
	for i := 0; i < 50; i++ {
		c.UR(state[:])
		pos := c.Pos()
		if pos < last {
			t.Fatalf("Pos went backward: %d -> %d", last, pos)
		}
		last = pos
	}
}

// TestSentinelEndConsumesWithoutPanic checks SentinelEnd can be called on a
// coder that has already decoded some symbols.
func TestSentinelEndConsumesWithoutPanic(t *testing.T) {
	c := NewRangeCoder(make([]byte, 16))
	state := [contextSize]byte{}
	for i := range state {
		state[i] = 128
	}
	c.UR(state[:])
	c.SentinelEnd()
}

/*
DESCRIPTION
  pred.go implements neighbor-pixel border derivation, context-index
  computation, and median prediction.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ffv1dec

// sample is any plane sample width this decoder predicts over: 8-bit planes,
// 16-bit planes, and the 32-bit RCT scratch plane.
type sample interface {
	~uint8 | ~uint16 | ~uint32
}

// deriveBorders calculates the six named neighbours of the sample at (x, y)
// in plane, per the border diagram below. Neighbours above the first row
// read as zero. At the left edge they are substituted rather than zeroed: at
// x == 0, l takes the value of t and tl the value two rows up in column 0
// (zero when y < 2); at x == 1, L takes the value of tl. tr is clamped to the
// last column.
//
//	+---+---+---+---+
//	|   |   | T |   |
//	+---+---+---+---+
//	|   |tl | t |tr |
//	+---+---+---+---+
//	| L | l | X |   |
//	+---+---+---+---+
//
// where 'X' is the sample being predicted.
//
// See: * 3.1. Border
//      * 3.2. Samples
func deriveBorders[T sample](plane []T, x, y, width, stride int) (tt, ll, t, l, tr, tl int32) {
	pos := y*stride + x

	if y > 1 {
		tt = int32(plane[pos-2*stride])
	}

	if y > 0 && x == 1 {
		ll = int32(plane[pos-stride-1])
	} else if x > 1 {
		ll = int32(plane[pos-2])
	}

	if y > 0 {
		t = int32(plane[pos-stride])
	}

	if x > 0 {
		l = int32(plane[pos-1])
	} else if y > 0 {
		l = int32(plane[pos-stride])
	}

	if y > 1 && x == 0 {
		tl = int32(plane[pos-2*stride])
	} else if y > 0 && x > 0 {
		tl = int32(plane[pos-stride-1])
	}

	if y > 0 {
		tr = int32(plane[pos-stride+int(min32(1, int32(width-1-x)))])
	}

	return tt, ll, t, l, tr, tl
}

// getContext computes the context index for a sample from its six
// neighbours, via the five quantization tables of a quantization table set.
//
// See: * 3.4. Context
//      * 3.5. Quantization Table Sets
func getContext(quantTables *[maxContextInputs][256]int16, tt, ll, t, l, tr, tl int32) int32 {
	return int32(quantTables[0][uint8(l-tl)]) +
		int32(quantTables[1][uint8(tl-t)]) +
		int32(quantTables[2][uint8(t-tr)]) +
		int32(quantTables[3][uint8(ll-l)]) +
		int32(quantTables[4][uint8(tt-t)])
}

// getMedian computes the median of three values.
//
// See: 2.2.5. Mathematical Functions
func getMedian(a, b, c int32) int32 {
	return a + b + c - min32(a, min32(b, c)) - max32(a, max32(b, c))
}

/*
DESCRIPTION
  slice.go holds the per-frame and per-slice bookkeeping structures, the
  keyframe/footer scan that makes slice-parallel decoding possible, and slice
  header parsing.

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

// InternalFrame tracks the slice layout and per-slice coder state that
// persists across frames of a GOP (inter frames reuse the preceding
// keyframe's per-slice state rather than resetting it).
type InternalFrame struct {
	Keyframe  bool
	SliceInfo []SliceInfo
	Slices    []Slice
}

// SliceInfo describes one slice's location within a packet, as derived from
// the frame's slice footers.
//
// See: 4.8. Slice Footer
type SliceInfo struct {
	Pos         int
	Size        uint32
	ErrorStatus uint8
}

// Slice holds one slice's header, plane geometry, and adaptive coder state.
type Slice struct {
	Header      SliceHeader
	Planes      []SlicePlane
	State       [][][]uint8
	GolombState [][]GolombState
}

// SliceHeader is a parsed slice header.
//
// See: 4.5. Slice Header
type SliceHeader struct {
	SliceWidthMinus1   uint32
	SliceHeightMinus1  uint32
	SliceX             uint32
	SliceY             uint32
	QuantTableSetIndex []uint8
	PictureStructure   uint8
	SarNum             uint32
	SarDen             uint32
}

// SlicePlane is the pixel rectangle, within a frame plane, that one slice is
// responsible for decoding.
//
// Slot is the index into Frame.Buf/Buf16 this plane's samples belong in (0
// luma/green, 1 Cb/blue, 2 Cr/red, 3 alpha). Quant is separate: it is the
// index into a slice header's quant_table_set_index array used to look up
// this plane's quantization table set (0 for the full/luma plane, 1 for
// chroma, 2 for alpha) — two planes can share a Slot's table role (Cb and Cr
// both use Quant 1) while needing distinct Slots to land in distinct output
// buffers.
type SlicePlane struct {
	StartX, StartY int
	Width, Height  int
	Stride         int
	Offset         int
	Quant          int
	Slot           int
}

// isKeyframe reports whether buf's frame is a keyframe, by reading the
// single range-coded bit 4.3. Frame dedicates to it.
//
// See: 4.3. Frame
func isKeyframe(buf []byte) bool {
	state := [contextSize]byte{}
	for i := range state {
		state[i] = 128
	}
	coder := NewRangeCoder(buf)
	return coder.BR(state[:])
}

// countSlices walks buf's slice footers from the end of the packet backward,
// recovering each slice's position and size without needing to decode
// anything, which is what makes slice-parallel decoding possible.
//
// See: * 4.8. Slice Footer
//      * 9.1.1. Multi-threading Support and Independence of Slices
func countSlices(buf []byte, ec bool) ([]SliceInfo, error) {
	// slice_size (3 bytes) and error_status (1 byte) are always present;
	// slice_crc_parity (4 bytes) is present only when ec is set.
	footerSize := 4
	if ec {
		footerSize += 4
	}

	endPos := len(buf)
	var infos []SliceInfo
	for endPos > 0 {
		if endPos < footerSize {
			return nil, newErr(SliceError, "invalid slice footer")
		}
		// 4.8.1. slice_size
		size := uint32(buf[endPos-footerSize])<<16 |
			uint32(buf[endPos-footerSize+1])<<8 |
			uint32(buf[endPos-footerSize+2])

		// 4.8.2. error_status
		errorStatus := buf[endPos-footerSize+3]

		pos := endPos - int(size) - footerSize
		infos = append(infos, SliceInfo{Pos: pos, Size: size, ErrorStatus: errorStatus})
		endPos = pos
	}

	if endPos < 0 {
		return nil, newErr(SliceError, "invalid slice footer")
	}

	for i, j := 0, len(infos)-1; i < j; i, j = i+1, j-1 {
		infos[i], infos[j] = infos[j], infos[i]
	}

	return infos, nil
}

// parseSliceHeader parses a slice header from coder and derives the pixel
// rectangles (one per coded plane) the slice is responsible for.
//
// See: 4.5. Slice Header
func parseSliceHeader(s *Slice, record *ConfigRecord, coder *RangeCoder) {
	sliceState := [contextSize]byte{}
	for i := range sliceState {
		sliceState[i] = 128
	}

	// 4.5.1 - 4.5.4.
	s.Header.SliceX = coder.UR(sliceState[:])
	s.Header.SliceY = coder.UR(sliceState[:])
	s.Header.SliceWidthMinus1 = coder.UR(sliceState[:])
	s.Header.SliceHeightMinus1 = coder.UR(sliceState[:])

	// 4.5.5. quant_table_set_index_count
	quantTableSetIndexCount := 1
	if record.ChromaPlanes {
		quantTableSetIndexCount++
	}
	if record.ExtraPlane {
		quantTableSetIndexCount++
	}

	// 4.5.6. quant_table_set_index
	s.Header.QuantTableSetIndex = make([]uint8, quantTableSetIndexCount)
	for i := range s.Header.QuantTableSetIndex {
		s.Header.QuantTableSetIndex[i] = uint8(coder.UR(sliceState[:]))
	}

	// 4.5.7. picture_structure
	s.Header.PictureStructure = uint8(coder.UR(sliceState[:]))

	// 4.5.8 - 4.5.9.
	s.Header.SarNum = coder.UR(sliceState[:])
	s.Header.SarDen = coder.UR(sliceState[:])

	// See: * 4.6.3. slice_pixel_height
	//      * 4.6.4. slice_pixel_y
	//      * 4.7.2. slice_pixel_width
	//      * 4.7.3. slice_pixel_x
	startX := int(s.Header.SliceX*record.Width) / (int(record.NumHSlicesMinus1) + 1)
	startY := int(s.Header.SliceY*record.Height) / (int(record.NumVSlicesMinus1) + 1)
	width := int((s.Header.SliceX+s.Header.SliceWidthMinus1+1)*record.Width)/(int(record.NumHSlicesMinus1)+1) - startX
	height := int((s.Header.SliceY+s.Header.SliceHeightMinus1+1)*record.Height)/(int(record.NumVSlicesMinus1)+1) - startY

	stride := int(record.Width)
	offset := startX + startY*stride

	// See: * 4.7.2. plane_pixel_height
	//      * 4.8.1. plane_pixel_width
	fullPlane := SlicePlane{
		StartX: startX, StartY: startY,
		Width: width, Height: height,
		Stride: stride, Offset: offset,
		Quant: 0, Slot: 0,
	}

	// Bitstream order (4.6. Slice Content) puts alpha, when present, before
	// the full/luma plane; Slot (not position in this slice) selects the
	// output buffer, so that ordering can differ freely from Frame's fixed
	// luma/Cb/Cr/alpha buffer layout.
	s.Planes = s.Planes[:0]
	if record.ExtraPlane {
		alphaPlane := fullPlane
		alphaPlane.Quant = 2
		alphaPlane.Slot = 3
		s.Planes = append(s.Planes, alphaPlane)
	}
	s.Planes = append(s.Planes, fullPlane)

	if record.ChromaPlanes {
		hSub := 1 << record.Log2HChromaSubsample
		vSub := 1 << record.Log2VChromaSubsample
		// cStartX divides by vSub and cStartY by hSub: this looks backwards
		// but matches the formulas in 4.7.2/4.8.1 exactly.
		cStartX := ceilDiv(startX, vSub)
		cStartY := ceilDiv(startY, hSub)
		cWidth := ceilDiv(width, hSub)
		cHeight := ceilDiv(height, vSub)
		cStride := ceilDiv(int(record.Width), hSub)
		cOffset := cStartX + cStartY*cStride

		chromaPlane := SlicePlane{
			StartX: cStartX, StartY: cStartY,
			Width: cWidth, Height: cHeight,
			Stride: cStride, Offset: cOffset,
			Quant: 1,
		}
		cb, cr := chromaPlane, chromaPlane
		cb.Slot, cr.Slot = 1, 2
		s.Planes = append(s.Planes, cb, cr)
	}
}

// ceilDiv divides a by b, rounding up, matching the spec's explicit
// floating-point ceil() on the chroma plane geometry formulas.
func ceilDiv(a, b int) int {
	if a%b == 0 {
		return a / b
	}
	return a/b + 1
}

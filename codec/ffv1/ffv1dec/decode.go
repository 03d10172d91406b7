/*
DESCRIPTION
  decode.go ties the configuration record, range/Golomb-Rice coders,
  predictor, and RCT together into the decoder's public API: constructing a
  Decoder from a container-supplied configuration record, and decoding
  successive frames from it.

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

import (
	"sync"

	"github.com/pkg/errors"
)

// Frame is a decoded FFV1 frame.
//
// Image data is in Buf when BitDepth is 8, and in Buf16 otherwise. buf32 is
// unexported scratch space for 16-bit RGB decoding and is never populated in
// a Frame returned to a caller.
//
// Planes are laid out as follows:
//   - If ColorSpace is ColorspaceYCbCr:
//     Plane 0 is luma (always present). If HasChroma, planes 1 and 2 are Cb
//     and Cr, subsampled by ChromaSubsampleH/ChromaSubsampleV. If HasAlpha,
//     the last plane is alpha.
//   - If ColorSpace is ColorspaceRGB:
//     Plane 0 is green, plane 1 is blue, plane 2 is red. If HasAlpha, plane
//     3 is alpha.
type Frame struct {
	Buf   [][]uint8
	Buf16 [][]uint16
	buf32 [][]uint32

	Width              uint32
	Height             uint32
	BitDepth           uint8
	ColorSpace         uint8
	HasChroma          bool
	HasAlpha           bool
	ChromaSubsampleV   uint8
	ChromaSubsampleH   uint8
}

// Decoder is an FFV1 version 3 decoder instance. A Decoder is not safe for
// concurrent use by multiple goroutines; decode frames of a stream from a
// single goroutine, in bitstream order, reusing the same Decoder so that
// inter-frame coder state carries over correctly.
type Decoder struct {
	record          *ConfigRecord
	stateTransition [256]byte
	currentFrame    InternalFrame
}

// New creates a Decoder from a container-supplied configuration record
// (Matroska CodecPrivate, or the ISOBMFF 'glbl' box) and the frame
// dimensions the container reports.
func New(record []byte, width, height uint32) (*Decoder, error) {
	if width == 0 || height == 0 {
		return nil, wrapErr(InvalidInputData, "invalid dimensions",
			errors.Errorf("%dx%d", width, height))
	}
	if len(record) == 0 {
		return nil, newErr(InvalidInputData, "invalid record with length zero")
	}

	cfg, err := ParseConfigRecord(record, width, height)
	if err != nil {
		return nil, wrapErr(InvalidConfiguration, "invalid v3 configuration record", err)
	}

	d := &Decoder{record: cfg}
	d.initializeStateTransition()

	Log.Debug("decoder created", "width", width, "height", height,
		"bitsPerRawSample", cfg.BitsPerRawSample, "coderType", cfg.CoderType)

	return d, nil
}

// initializeStateTransition derives the decoder's range-coder state
// transition table from the default table and the configuration record's
// per-state delta.
//
// See: 4.1.4. state_transition_delta
func (d *Decoder) initializeStateTransition() {
	for i := 1; i < 256; i++ {
		d.stateTransition[i] = byte(int16(defaultStateTransition[i]) + d.record.StateTransitionDelta[i])
	}
}

// DecodeFrame decodes one coded frame from frameInput into a Frame.
//
// Slices are decoded concurrently, one goroutine per slice, since slices are
// independent by design.
//
// See: 9.1.1. Multi-threading Support and Independence of Slices
func (d *Decoder) DecodeFrame(frameInput []byte) (*Frame, error) {
	record := d.record

	frame := &Frame{
		Width:            record.Width,
		Height:           record.Height,
		BitDepth:         record.BitsPerRawSample,
		ColorSpace:       record.ColorspaceType,
		HasChroma:        record.ChromaPlanes,
		HasAlpha:         record.ExtraPlane,
		ChromaSubsampleV: 0,
		ChromaSubsampleH: 0,
	}
	if record.ChromaPlanes {
		frame.ChromaSubsampleV = record.Log2VChromaSubsample
		frame.ChromaSubsampleH = record.Log2HChromaSubsample
	}

	numPlanes := 1
	if record.ChromaPlanes {
		numPlanes += 2
	}
	if record.ExtraPlane {
		numPlanes++
	}

	fullSize := int(record.Width) * int(record.Height)
	chromaWidth := ceilDiv(int(record.Width), 1<<record.Log2HChromaSubsample)
	chromaHeight := ceilDiv(int(record.Height), 1<<record.Log2VChromaSubsample)
	chromaSize := chromaWidth * chromaHeight

	if record.BitsPerRawSample == 8 {
		frame.Buf = make([][]uint8, numPlanes)
		frame.Buf[0] = make([]uint8, fullSize)
		if record.ChromaPlanes {
			frame.Buf[1] = make([]uint8, chromaSize)
			frame.Buf[2] = make([]uint8, chromaSize)
		}
		if record.ExtraPlane {
			frame.Buf[3] = make([]uint8, fullSize)
		}
	}

	// 8-bit RGB also gets a 16-bit scratch buffer, since JPEG2000-RCT is
	// coded in n+1 bits regardless of the output bit depth.
	if record.BitsPerRawSample > 8 || record.ColorspaceType == ColorspaceRGB {
		frame.Buf16 = make([][]uint16, numPlanes)
		frame.Buf16[0] = make([]uint16, fullSize)
		if record.ChromaPlanes {
			frame.Buf16[1] = make([]uint16, chromaSize)
			frame.Buf16[2] = make([]uint16, chromaSize)
		}
		if record.ExtraPlane {
			frame.Buf16[3] = make([]uint16, fullSize)
		}
	}

	// 16-bit RGB needs a 32-bit scratch buffer: its JPEG2000-RCT is coded in
	// 17-bit values, too wide for the 16-bit output planes to hold pre-RCT.
	if record.BitsPerRawSample == 16 && record.ColorspaceType == ColorspaceRGB {
		frame.buf32 = make([][]uint32, numPlanes)
		frame.buf32[0] = make([]uint32, fullSize)
		frame.buf32[1] = make([]uint32, fullSize)
		frame.buf32[2] = make([]uint32, fullSize)
		if record.ExtraPlane {
			frame.buf32[3] = make([]uint32, fullSize)
		}
	}

	// The keyframe bit and slice footers are parsed ahead of slice decoding
	// so every slice's state-reset behaviour and byte range is known before
	// dispatch, which is what makes the slices independently decodable.
	//
	// See: 9.1.1. Multi-threading Support and Independence of Slices
	d.currentFrame.Keyframe = isKeyframe(frameInput)

	if err := d.parseFooters(frameInput); err != nil {
		Log.Error("invalid frame footer", "error", err.Error())
		return nil, wrapErr(FrameError, "invalid frame footer", err)
	}

	Log.Debug("decoding frame", "keyframe", d.currentFrame.Keyframe, "slices", len(d.currentFrame.Slices))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i := range d.currentFrame.Slices {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := d.decodeSlice(frameInput, i, frame); err != nil {
				Log.Error("slice decode failed", "slice", i, "error", err.Error())
				mu.Lock()
				if firstErr == nil {
					firstErr = wrapErr(SliceError, "slice decode failed", errors.Wrapf(err, "slice %d", i))
				}
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	// The 8-bit RGB scratch buffer and the 16-bit RGB scratch buffer are
	// never part of the decoded result.
	if record.BitsPerRawSample == 8 && record.ColorspaceType == ColorspaceRGB {
		frame.Buf16 = nil
	}
	frame.buf32 = nil

	return frame, nil
}

// parseFooters scans frameInput's slice footers and allocates (or, for inter
// frames, carries over) the per-slice coder state.
//
// See: * 9.1.1. Multi-threading Support and Independence of Slices
//      * 3.8.1.3. Initial Values for the Context Model
//      * 3.8.2.4. Initial Values for the VLC context state
func (d *Decoder) parseFooters(buf []byte) error {
	sliceInfo, err := countSlices(buf, d.record.EC != 0)
	if err != nil {
		return err
	}
	d.currentFrame.SliceInfo = sliceInfo

	slices := make([]Slice, len(sliceInfo))

	if !d.currentFrame.Keyframe {
		if len(slices) != len(d.currentFrame.Slices) {
			return newErr(SliceError, "inter frames must have the same number of slices as the preceding intra frame")
		}
		for i := range slices {
			slices[i].State = d.currentFrame.Slices[i].State
			if d.record.CoderType == 0 {
				slices[i].GolombState = d.currentFrame.Slices[i].GolombState
			}
		}
	}

	d.currentFrame.Slices = slices
	return nil
}

// resetSliceStates reinitialises a slice's adaptive coder state to the
// configuration record's initial values. Called on every slice of a
// keyframe.
//
// See: * 3.8.1.3. Initial Values for the Context Model
//      * 3.8.2.4. Initial Values for the VLC context state
func resetSliceStates(s *Slice, record *ConfigRecord) {
	s.State = make([][][]uint8, len(record.InitialStates))
	for i, set := range record.InitialStates {
		s.State[i] = make([][]uint8, len(set))
		for j, ctx := range set {
			s.State[i][j] = append([]uint8(nil), ctx...)
		}
	}

	if record.CoderType == 0 {
		count := record.QuantTableSetCount
		s.GolombState = make([][]GolombState, count)
		for i := 0; i < count; i++ {
			states := make([]GolombState, record.ContextCount[i])
			for j := range states {
				states[j] = NewGolombState()
			}
			s.GolombState[i] = states
		}
	}
}

// decodeSlice decodes the single slice numbered slicenum out of buf into
// frame.
func (d *Decoder) decodeSlice(buf []byte, slicenum int, frame *Frame) error {
	record := d.record
	info := d.currentFrame.SliceInfo[slicenum]
	s := &d.currentFrame.Slices[slicenum]

	// See: * 4.8.2. error_status
	//      * 4.8.3. slice_crc_parity
	if record.EC == 1 {
		if info.ErrorStatus != 0 {
			return wrapErr(SliceError, "error_status is non-zero", errors.Errorf("%d", info.ErrorStatus))
		}

		sliceBufEnd := buf[info.Pos : info.Pos+int(info.Size)+8] // 8 bytes of footer.
		if crc32MPEG2(sliceBufEnd) != 0 {
			return newErr(InvalidInputData, "CRC mismatch")
		}
	}

	// A keyframe resets every slice's adaptive coder state.
	//
	// See: * 3.8.1.3. Initial Values for the Context Model
	//      * 3.8.2.4. Initial Values for the VLC context state
	if d.currentFrame.Keyframe {
		resetSliceStates(s, record)
	}

	rc := NewRangeCoder(buf[info.Pos:])
	state := [contextSize]byte{}
	for i := range state {
		state[i] = 128
	}

	// Slice 0 carries the frame's keyframe bit; every other slice starts
	// directly at its header.
	if slicenum == 0 {
		rc.BR(state[:])
	}

	if record.CoderType == 2 {
		rc.SetTable(&d.stateTransition)
	}

	parseSliceHeader(s, record, rc)

	var gc *GolombCoder
	if record.CoderType == 0 {
		// Switching to the Golomb-Rice coder requires locating the byte
		// boundary the range coder's termination sequence leaves behind.
		//
		// See: 3.8.1.1.1. Termination
		rc.SentinelEnd()
		offset := rc.Pos() - 1
		gc = NewGolombCoder(buf[info.Pos+offset:])
	}

	decodeSliceContent(s, record, rc, gc, frame)

	return nil
}

// decodeSliceContent decodes the sample data for a single slice, dispatching
// on colorspace and bit depth to pick the plane layout (independent YCbCr
// planes vs. line-interleaved RGB) and output buffer width, then applies the
// inverse RCT for RGB content.
//
// See: 4.6. Slice Content
func decodeSliceContent(s *Slice, record *ConfigRecord, rc *RangeCoder, gc *GolombCoder, frame *Frame) {
	if record.ColorspaceType != ColorspaceRGB {
		if record.BitsPerRawSample == 8 {
			decodeSliceContentYUV(s, record, rc, gc, frame.Buf)
		} else {
			decodeSliceContentYUV16(s, record, rc, gc, frame.Buf16)
		}
		return
	}

	p := s.Planes[0]
	switch {
	case record.BitsPerRawSample == 8:
		decodeSliceContentRCT16(s, record, rc, gc, frame.Buf16)
		rct8From16(frame.Buf, frame.Buf16, p.Width, p.Height, p.Stride, p.Offset)
	case record.BitsPerRawSample >= 9 && record.BitsPerRawSample <= 15 && !record.ExtraPlane:
		decodeSliceContentRCT16(s, record, rc, gc, frame.Buf16)
		rct16InPlace(frame.Buf16, p.Width, p.Height, p.Stride, p.Offset, int(record.BitsPerRawSample))
	default:
		decodeSliceContentRCT32(s, record, rc, gc, frame.buf32)
		rct16From32(frame.Buf16, frame.buf32, p.Width, p.Height, p.Stride, p.Offset)
	}
}

// decodeSliceContentYUV decodes a slice's 8-bit YCbCr(A) planes, which are
// independent of each other.
//
// See: 3.7.1. YCbCr
func decodeSliceContentYUV(s *Slice, record *ConfigRecord, rc *RangeCoder, gc *GolombCoder, buf [][]uint8) {
	for _, p := range s.Planes {
		if gc != nil {
			gc.NewPlane(uint32(p.Width))
		}
		for y := 0; y < p.Height; y++ {
			decodeLine(&s.Header, record, rc, gc, s.State, s.GolombState, buf[p.Slot][p.Offset:], p.Width, p.Height, p.Stride, y, p.Quant)
		}
	}
}

// decodeSliceContentYUV16 is decodeSliceContentYUV for >8-bit samples.
func decodeSliceContentYUV16(s *Slice, record *ConfigRecord, rc *RangeCoder, gc *GolombCoder, buf [][]uint16) {
	for _, p := range s.Planes {
		if gc != nil {
			gc.NewPlane(uint32(p.Width))
		}
		for y := 0; y < p.Height; y++ {
			decodeLine16(&s.Header, record, rc, gc, s.State, s.GolombState, buf[p.Slot][p.Offset:], p.Width, p.Height, p.Stride, y, p.Quant)
		}
	}
}

// decodeSliceContentRCT16 decodes a slice's RGB planes line-interleaved (all
// planes of a line, before moving to the next line), as the RCT predictor
// requires, into 16-bit scratch planes.
//
// See: 3.7.2. RGB
func decodeSliceContentRCT16(s *Slice, record *ConfigRecord, rc *RangeCoder, gc *GolombCoder, buf [][]uint16) {
	p0 := s.Planes[0]
	if gc != nil {
		gc.NewPlane(uint32(p0.Width))
	}
	for y := 0; y < p0.Height; y++ {
		for _, p := range s.Planes {
			decodeLine16(&s.Header, record, rc, gc, s.State, s.GolombState, buf[p.Slot][p0.Offset:], p0.Width, p0.Height, p0.Stride, y, p.Quant)
		}
	}
}

// decodeSliceContentRCT32 is decodeSliceContentRCT16 for the 16-bit RGB
// 32-bit-scratch-plane path.
func decodeSliceContentRCT32(s *Slice, record *ConfigRecord, rc *RangeCoder, gc *GolombCoder, buf [][]uint32) {
	p0 := s.Planes[0]
	if gc != nil {
		gc.NewPlane(uint32(p0.Width))
	}
	for y := 0; y < p0.Height; y++ {
		for _, p := range s.Planes {
			decodeLine32(&s.Header, record, rc, gc, s.State, s.GolombState, buf[p.Slot][p0.Offset:], p0.Width, p0.Height, p0.Stride, y, p.Quant)
		}
	}
}

// decodeLine decodes one sample row of an 8-bit plane.
//
// See: 4.7. Line
func decodeLine(header *SliceHeader, record *ConfigRecord, rc *RangeCoder, gc *GolombCoder, state [][][]uint8, golombState [][]GolombState, buf []uint8, width, height, stride, y, quantIndex int) {
	// Runs are horizontal and cannot cross a line boundary.
	if gc != nil {
		gc.NewLine()
	}

	shift := uint(record.BitsPerRawSample)
	if record.ColorspaceType == ColorspaceRGB {
		shift++
	}

	quantTable := &record.QuantTables[header.QuantTableSetIndex[quantIndex]]

	for x := 0; x < width; x++ {
		tt, ll, t, l, tr, tl := deriveBorders(buf, x, y, width, stride)

		context := getContext(quantTable, tt, ll, t, l, tr, tl)
		sign := context < 0
		if sign {
			context = -context
		}

		var diff int32
		if gc != nil {
			diff = gc.SG(context, &golombState[quantIndex][context], shift)
		} else {
			diff = rc.SR(state[quantIndex][context])
		}

		if sign {
			diff = -diff
		}

		val := diff + getMedian(l, t, l+t-tl)
		val &= (1 << shift) - 1

		buf[y*stride+x] = uint8(val)
	}
}

// decodeLine16 is decodeLine for 16-bit planes, including the Golomb-Rice
// 16-bit YCbCr signed-neighbour special case.
//
// See: 4.7. Line
func decodeLine16(header *SliceHeader, record *ConfigRecord, rc *RangeCoder, gc *GolombCoder, state [][][]uint8, golombState [][]GolombState, buf []uint16, width, height, stride, y, quantIndex int) {
	if gc != nil {
		gc.NewLine()
	}

	shift := uint(record.BitsPerRawSample)
	if record.ColorspaceType == ColorspaceRGB {
		shift++
	}

	quantTable := &record.QuantTables[header.QuantTableSetIndex[quantIndex]]

	for x := 0; x < width; x++ {
		tt, ll, t, l, tr, tl := deriveBorders(buf, x, y, width, stride)

		context := getContext(quantTable, tt, ll, t, l, tr, tl)
		sign := context < 0
		if sign {
			context = -context
		}

		var diff int32
		if gc != nil {
			diff = gc.SG(context, &golombState[quantIndex][context], shift)
		} else {
			diff = rc.SR(state[quantIndex][context])
		}

		if sign {
			diff = -diff
		}

		var pred int32
		if record.ColorspaceType == ColorspaceYCbCr && record.BitsPerRawSample == 16 && gc != nil {
			// 3.3. Median Predictor: 16-bit Golomb-Rice YCbCr neighbours are
			// interpreted as signed before the median is taken.
			l16, t16, tl16 := int32(int16(l)), int32(int16(t)), int32(int16(tl))
			pred = getMedian(l16, t16, l16+t16-tl16)
		} else {
			pred = getMedian(l, t, l+t-tl)
		}

		val := diff + pred
		val &= (1 << shift) - 1

		buf[y*stride+x] = uint16(val)
	}
}

// decodeLine32 is decodeLine for the 32-bit RCT scratch planes.
func decodeLine32(header *SliceHeader, record *ConfigRecord, rc *RangeCoder, gc *GolombCoder, state [][][]uint8, golombState [][]GolombState, buf []uint32, width, height, stride, y, quantIndex int) {
	if gc != nil {
		gc.NewLine()
	}

	shift := uint(record.BitsPerRawSample) + 1

	quantTable := &record.QuantTables[header.QuantTableSetIndex[quantIndex]]

	for x := 0; x < width; x++ {
		tt, ll, t, l, tr, tl := deriveBorders(buf, x, y, width, stride)

		context := getContext(quantTable, tt, ll, t, l, tr, tl)
		sign := context < 0
		if sign {
			context = -context
		}

		var diff int32
		if gc != nil {
			diff = gc.SG(context, &golombState[quantIndex][context], shift)
		} else {
			diff = rc.SR(state[quantIndex][context])
		}

		if sign {
			diff = -diff
		}

		val := diff + getMedian(l, t, l+t-tl)
		val &= (1 << shift) - 1

		buf[y*stride+x] = uint32(val)
	}
}

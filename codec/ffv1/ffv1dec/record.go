/*
DESCRIPTION
  record.go parses the FFV1 configuration record: the codec-private blob a
  container (e.g. Matroska, MOV/MP4) supplies out of band, describing the
  parameters every frame in the stream is coded with.

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

import "github.com/pkg/errors"

const (
	// maxQuantTables is the maximum number of quantization table sets a
	// configuration record may define.
	maxQuantTables = 8
	// maxContextInputs is the number of quantization tables per set (one per
	// predicted-sample input to the context computation).
	//
	// See: 4.9. Quantization Table Set
	maxContextInputs = 5
)

// Colorspaces, per 4.1.5. colorspace_type.
const (
	ColorspaceYCbCr = 0
	ColorspaceRGB   = 1
)

// ConfigRecord holds the decoded configuration record: the parameters shared
// by every frame of the stream.
//
// See: * 4.1. Parameters
//      * 4.2. Configuration Record
type ConfigRecord struct {
	Version              uint8
	MicroVersion          uint8
	CoderType             uint8
	StateTransitionDelta  [256]int16
	ColorspaceType        uint8
	BitsPerRawSample      uint8
	ChromaPlanes          bool
	Log2HChromaSubsample  uint8
	Log2VChromaSubsample  uint8
	ExtraPlane            bool
	NumHSlicesMinus1      uint8
	NumVSlicesMinus1      uint8
	QuantTableSetCount    int
	ContextCount          [maxQuantTables]int32
	QuantTables           [maxQuantTables][maxContextInputs][256]int16
	InitialStateDelta     [][][]int16
	InitialStates         [][][]uint8
	EC                    uint8
	Intra                 uint8
	Width                 uint32
	Height                uint32
}

// ParseConfigRecord parses a configuration record out of buf, validating its
// CRC and every field, and records the container-supplied frame dimensions.
//
// See: * 4.1. Parameters
//      * 4.2. Configuration Record
func ParseConfigRecord(buf []byte, width, height uint32) (*ConfigRecord, error) {
	// 4.2.2. configuration_record_crc_parity
	if crc32MPEG2(buf) != 0 {
		return nil, newErr(InvalidConfiguration, "failed CRC check for configuration record")
	}

	coder := NewRangeCoder(buf)
	state := [contextSize]byte{}
	for i := range state {
		state[i] = 128
	}

	// 4.1.1. version
	version := uint8(coder.UR(state[:]))
	if version != 3 {
		return nil, newErr(InvalidConfiguration, "only FFV1 version 3 is supported")
	}

	// 4.1.2. micro_version
	microVersion := uint8(coder.UR(state[:]))
	if microVersion < 1 {
		return nil, newErr(InvalidConfiguration, "only FFV1 micro version >=1 supported")
	}

	// 4.1.3. coder_type
	coderType := uint8(coder.UR(state[:]))
	if coderType > 2 {
		return nil, wrapErr(InvalidConfiguration, "invalid coder_type", errors.Errorf("%d", coderType))
	}

	// 4.1.4. state_transition_delta
	var stateTransitionDelta [256]int16
	if coderType > 1 {
		for i := 1; i < 256; i++ {
			stateTransitionDelta[i] = int16(coder.SR(state[:]))
		}
	}

	// 4.1.5. colorspace_type
	colorspaceType := uint8(coder.UR(state[:]))
	if colorspaceType > 1 {
		return nil, wrapErr(InvalidConfiguration, "invalid colorspace_type", errors.Errorf("%d", colorspaceType))
	}

	// 4.1.7. bits_per_raw_sample
	bitsPerRawSample := uint8(coder.UR(state[:]))
	if bitsPerRawSample == 0 {
		bitsPerRawSample = 8
	}
	if coderType == 0 && bitsPerRawSample != 8 {
		return nil, newErr(InvalidConfiguration, "golomb-rice mode cannot have >8bit per sample")
	}

	// 4.1.6. chroma_planes
	chromaPlanes := coder.BR(state[:])
	if colorspaceType == ColorspaceRGB && !chromaPlanes {
		return nil, newErr(InvalidConfiguration, "RGB must contain chroma planes")
	}

	// 4.1.8. log2_h_chroma_subsample
	log2HChromaSubsample := uint8(coder.UR(state[:]))
	if colorspaceType == ColorspaceRGB && log2HChromaSubsample != 0 {
		return nil, newErr(InvalidConfiguration, "RGB cannot be subsampled")
	}

	// 4.1.9. log2_v_chroma_subsample
	log2VChromaSubsample := uint8(coder.UR(state[:]))
	if colorspaceType == ColorspaceRGB && log2VChromaSubsample != 0 {
		return nil, newErr(InvalidConfiguration, "RGB cannot be subsampled")
	}

	// 4.1.10. extra_plane
	extraPlane := coder.BR(state[:])
	// 4.1.11. num_h_slices
	numHSlicesMinus1 := uint8(coder.UR(state[:]))
	// 4.1.12. num_v_slices
	numVSlicesMinus1 := uint8(coder.UR(state[:]))

	// 4.1.13. quant_table_set_count
	quantTableSetCount := int(coder.UR(state[:]))
	switch {
	case quantTableSetCount == 0:
		return nil, newErr(InvalidConfiguration, "quant_table_set_count may not be zero")
	case quantTableSetCount > maxQuantTables:
		return nil, wrapErr(InvalidConfiguration, "too many quant tables",
			errors.Errorf("%d > %d", quantTableSetCount, maxQuantTables))
	}

	var quantTables [maxQuantTables][maxContextInputs][256]int16
	var contextCount [maxQuantTables]int32
	for i := 0; i < quantTableSetCount; i++ {
		// 4.9. Quantization Table Set
		scale := int32(1)
		for j := 0; j < maxContextInputs; j++ {
			quantState := [contextSize]byte{}
			for k := range quantState {
				quantState[k] = 128
			}
			v := int32(0)
			k := 0
			for k < 128 {
				lenMinus1 := coder.UR(quantState[:])
				for n := uint32(0); n < lenMinus1+1; n++ {
					quantTables[i][j][k] = int16(scale * v)
					k++
				}
				v++
			}
			for k := 1; k < 128; k++ {
				quantTables[i][j][256-k] = -quantTables[i][j][k]
			}
			quantTables[i][j][128] = -quantTables[i][j][127]
			scale *= 2*v - 1
		}
		contextCount[i] = (scale + 1) / 2
	}

	// A configuration record lays out a variable-length buffer whose extent
	// (context_count) is itself data-dependent, so the initial state deltas
	// are built up as a ragged 3D slice rather than a fixed array.
	initialStateDelta := make([][][]int16, quantTableSetCount)
	for i := 0; i < quantTableSetCount; i++ {
		initialStateDelta[i] = make([][]int16, contextCount[i])
		for j := range initialStateDelta[i] {
			initialStateDelta[i][j] = make([]int16, contextSize)
		}
		statesCoded := coder.BR(state[:])
		if statesCoded {
			for j := 0; j < int(contextCount[i]); j++ {
				for k := 0; k < contextSize; k++ {
					initialStateDelta[i][j][k] = int16(coder.SR(state[:]))
				}
			}
		}
	}

	initialStates := make([][][]uint8, len(initialStateDelta))
	for i := range initialStateDelta {
		initialStates[i] = make([][]uint8, len(initialStateDelta[i]))
		for j := range initialStateDelta[i] {
			initialStates[i][j] = make([]uint8, len(initialStateDelta[i][j]))
			for k := range initialStateDelta[i][j] {
				pred := int16(128)
				if j != 0 {
					pred = int16(initialStates[i][j-1][k])
				}
				initialStates[i][j][k] = uint8((pred + initialStateDelta[i][j][k]) & 255)
			}
		}
	}

	// 4.1.16. ec
	ec := uint8(coder.UR(state[:]))
	// 4.1.17. intra
	intra := uint8(coder.UR(state[:]))

	return &ConfigRecord{
		Version:              version,
		MicroVersion:         microVersion,
		CoderType:            coderType,
		StateTransitionDelta: stateTransitionDelta,
		ColorspaceType:       colorspaceType,
		BitsPerRawSample:     bitsPerRawSample,
		ChromaPlanes:         chromaPlanes,
		Log2HChromaSubsample: log2HChromaSubsample,
		Log2VChromaSubsample: log2VChromaSubsample,
		ExtraPlane:           extraPlane,
		NumHSlicesMinus1:     numHSlicesMinus1,
		NumVSlicesMinus1:     numVSlicesMinus1,
		QuantTableSetCount:   quantTableSetCount,
		ContextCount:         contextCount,
		QuantTables:          quantTables,
		InitialStateDelta:    initialStateDelta,
		InitialStates:        initialStates,
		EC:                   ec,
		Intra:                intra,
		Width:                width,
		Height:               height,
	}, nil
}

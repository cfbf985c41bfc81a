package fontload

import "encoding/binary"

// MaxP holds the fields of table 'maxp'. The TrueType profile fields are
// present for version 1.0 tables only.
type MaxP struct {
	VersionFixed uint32
	NumGlyphs    uint16

	HasExtendedProfile    bool
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

const maxpMinSize = 6
const maxpV10Size = 32

// DecodeMaxP decodes table 'maxp' from raw bytes. Returns (zero, false) if
// b is too short.
func DecodeMaxP(b []byte) (MaxP, bool) {
	var info MaxP
	if len(b) < maxpMinSize {
		return info, false
	}
	info.VersionFixed = binary.BigEndian.Uint32(b[0:4])
	info.NumGlyphs = binary.BigEndian.Uint16(b[4:6])
	if info.VersionFixed != 0x00010000 || len(b) < maxpV10Size {
		return info, true
	}
	info.HasExtendedProfile = true
	fields := []*uint16{
		&info.MaxPoints, &info.MaxContours, &info.MaxCompositePoints,
		&info.MaxCompositeContours, &info.MaxZones, &info.MaxTwilightPoints,
		&info.MaxStorage, &info.MaxFunctionDefs, &info.MaxInstructionDefs,
		&info.MaxStackElements, &info.MaxSizeOfInstructions,
		&info.MaxComponentElements, &info.MaxComponentDepth,
	}
	for i, field := range fields {
		*field = binary.BigEndian.Uint16(b[6+2*i:])
	}
	return info, true
}

// MaxP decodes the font's 'maxp' table.
func (f *ScalableFont) MaxP() (MaxP, bool) {
	b, ok := f.Table("maxp")
	if !ok {
		return MaxP{}, false
	}
	return DecodeMaxP(b)
}

package api

// HDF4 number type codes.  Bits above the low byte carry byte order and
// native flags and are ignored when naming a type.
const (
	NTUnlimited = 0
	NTUChar8    = 3
	NTChar8     = 4
	NTFloat32   = 5
	NTFloat64   = 6
	NTInt8      = 20
	NTUInt8     = 21
	NTInt16     = 22
	NTUInt16    = 23
	NTInt32     = 24
	NTUInt32    = 25
	NTInt64     = 26
	NTUInt64    = 27

	NTNative = 0x1000
	NTLitEnd = 0x4000
)

// DTypeUnknown is the name of any number type not in the table.
const DTypeUnknown = "unknown"

var dtypeNames = map[int32]string{
	NTInt8:      "int8",
	NTInt16:     "int16",
	NTInt32:     "int32",
	NTUInt8:     "uint8",
	NTUInt16:    "uint16",
	NTUInt32:    "uint32",
	NTFloat32:   "float32",
	NTFloat64:   "float64",
	NTChar8:     "char8",
	NTUChar8:    "uchar8",
	NTUnlimited: "unlimited",
}

// DTypeNames is every semantic type name a variable can report.
var DTypeNames = []string{
	"int8", "int16", "int32",
	"uint8", "uint16", "uint32",
	"float32", "float64",
	"char8", "uchar8",
	"complex", "unlimited",
	DTypeUnknown,
}

// BaseType strips the byte order and native flags from a number type.
func BaseType(nt int32) int32 {
	return nt &^ (NTNative | NTLitEnd)
}

// IsLittleEndian returns true if the number type is stored little-endian.
func IsLittleEndian(nt int32) bool {
	return nt&NTLitEnd != 0
}

// DTypeName maps a number type code to its semantic name.
func DTypeName(nt int32) string {
	if name, has := dtypeNames[BaseType(nt)]; has {
		return name
	}
	return DTypeUnknown
}

// TypeSize is the size in bytes of one element of the number type, or 0 if
// the type is unknown.
func TypeSize(nt int32) int {
	switch BaseType(nt) {
	case NTChar8, NTUChar8, NTInt8, NTUInt8:
		return 1
	case NTInt16, NTUInt16:
		return 2
	case NTInt32, NTUInt32, NTFloat32:
		return 4
	case NTFloat64, NTInt64, NTUInt64:
		return 8
	}
	return 0
}

package hdf

// HDF4 tags used by this reader.
const (
	tagNull       = 1
	tagLinked     = 20  // linked block table and blocks
	tagCompressed = 40  // compressed data
	tagNT         = 106 // number type
	tagSDG        = 700 // scientific data group, pre-NDG files
	tagSDD        = 701 // dimension record
	tagSD         = 702 // scientific data
	tagSDL        = 704 // labels
	tagNDG        = 720 // numeric data group
	tagVH         = 1962
	tagVS         = 1963
	tagVG         = 1965

	specialFlag = 0x4000
	userTagMin  = 0x8000
)

// Special element codes.
const (
	specialLinked  = 1
	specialExt     = 2
	specialComp    = 3
	specialVLinked = 4
	specialChunked = 5
	specialBuffer  = 6
	specialCompRaw = 7
)

// Compression coder types.
const (
	compNone    = 0
	compRLE     = 1
	compNBit    = 2
	compSkHuff  = 3
	compDeflate = 4
	compSZip    = 5
)

// Vgroup and Vdata conventions.
const (
	classAttr  = "Attr0.0"
	classVar   = "Var0.0"
	classDim   = "Dim0.0"
	classUDim  = "UDim0.0"
	classCDF   = "CDF0.0"
	attrValues = "VALUES"

	interlaceFull = 0
	interlaceNo   = 1

	attrSet = 1 // flag: the object carries an attribute list

	vdataIndex = -1 // attribute field index meaning the whole Vdata
)

// Number type classes, in the NT element.
const (
	ntClassPC = 4 // little-endian
)

func isSpecial(tag uint16) bool {
	return tag < userTagMin && tag&specialFlag != 0
}

func baseTag(tag uint16) uint16 {
	if isSpecial(tag) {
		return tag &^ specialFlag
	}
	return tag
}

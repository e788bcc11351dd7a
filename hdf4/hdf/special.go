package hdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
)

// readSpecial decodes the special element header raw and returns the data
// it describes.
func (h *HDF4) readSpecial(raw []byte, depth int) []byte {
	r := bytes.NewReader(raw)
	code := util.MustRead16(r)
	switch code {
	case specialLinked:
		return h.readLinked(r)
	case specialComp:
		return h.readCompressed(r, depth)
	}
	failError(ErrUnsupportedSpecial, fmt.Sprint("special element code ", code))
	panic("never gets here")
}

// readLinked gathers the blocks of a linked block element.  Block ref 0 is
// a block that was never written and reads as zeros.
func (h *HDF4) readLinked(r *bytes.Reader) []byte {
	length := int(int32(util.MustRead32(r)))
	firstLen := int(int32(util.MustRead32(r)))
	blockLen := int(int32(util.MustRead32(r)))
	nBlocks := int(int32(util.MustRead32(r)))
	linkRef := util.MustRead16(r)
	assert(length >= 0 && firstLen >= 0 && blockLen >= 0 && nBlocks > 0,
		fmt.Sprint("bad linked block header, link table ", linkRef))

	data := make([]byte, 0, length)
	seen := map[uint16]bool{}
	first := true
	for linkRef != 0 && len(data) < length {
		assert(!seen[linkRef], fmt.Sprint("linked block table loops at ", linkRef))
		seen[linkRef] = true
		table := bytes.NewReader(h.readElement(tagLinked, linkRef))
		next := util.MustRead16(table)
		for i := 0; i < nBlocks && len(data) < length; i++ {
			ref := util.MustRead16(table)
			size := blockLen
			if first {
				size = firstLen
				first = false
			}
			if size > length-len(data) {
				size = length - len(data)
			}
			if ref == 0 {
				data = append(data, make([]byte, size)...)
				continue
			}
			block := h.readElement(tagLinked, ref)
			if len(block) > size {
				block = block[:size]
			}
			data = append(data, block...)
		}
		linkRef = next
	}
	warnAssert(len(data) == length,
		fmt.Sprintf("linked element has %d of %d bytes", len(data), length))
	return data
}

// readCompressed decodes a compressed element.
func (h *HDF4) readCompressed(r *bytes.Reader, depth int) []byte {
	version := util.MustRead16(r)
	length := int(int32(util.MustRead32(r)))
	compRef := util.MustRead16(r)
	model := util.MustRead16(r)
	coder := util.MustRead16(r)
	assert(length >= 0, "negative compressed length")
	logger.Infof("compressed element v%d model %d coder %d, %d bytes", version, model, coder, length)

	data := h.readElementDepth(tagCompressed, compRef, depth)
	switch coder {
	case compNone:
		if len(data) > length {
			data = data[:length]
		}
		return data
	case compRLE:
		return decodeRLE(data, length)
	case compDeflate:
		return inflate(data, length)
	}
	failError(ErrUnknownCompression, fmt.Sprint("compression coder ", coder))
	panic("never gets here")
}

// decodeRLE expands run length encoding: a control byte with the high bit
// set repeats the next byte (ctrl&0x7f)+3 times, otherwise ctrl+1 literal
// bytes follow.
func decodeRLE(src []byte, length int) []byte {
	dst := make([]byte, 0, length)
	for i := 0; i < len(src) && len(dst) < length; {
		ctrl := src[i]
		i++
		if ctrl&0x80 != 0 {
			assert(i < len(src), "RLE run without a value")
			n := int(ctrl&0x7f) + 3
			for j := 0; j < n; j++ {
				dst = append(dst, src[i])
			}
			i++
			continue
		}
		n := int(ctrl) + 1
		assert(i+n <= len(src), "RLE literal run past end of data")
		dst = append(dst, src[i:i+n]...)
		i += n
	}
	if len(dst) > length {
		dst = dst[:length]
	}
	return dst
}

func inflate(src []byte, length int) []byte {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		failError(ErrCorrupted, fmt.Sprint("deflate header: ", err))
	}
	defer zr.Close()
	dst, err := io.ReadAll(io.LimitReader(zr, int64(length)))
	if err != nil {
		failError(ErrCorrupted, fmt.Sprint("deflate data: ", err))
	}
	return dst
}

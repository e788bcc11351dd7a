package util

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/batchatco/go-thrower"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
)

// HDF4 headers are big-endian.  Data follows the byte order of its number
// type, so the plain Must* forms take the order explicitly.

// ErrShortRead is thrown when a header ends before all of its fields.
var ErrShortRead = fmt.Errorf("%w: header ends early", api.ErrCorrupted)

func mustRead(err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		thrower.Throw(fmt.Errorf("%w: %w", ErrShortRead, err))
	}
	thrower.ThrowIfError(err)
}

// MustWrite wraps binary.Write and throws an error if it fails.
func MustWrite(w io.Writer, order binary.ByteOrder, data any) {
	thrower.ThrowIfError(binary.Write(w, order, data))
}

// MustWriteBE is MustWrite in big-endian order.
func MustWriteBE(w io.Writer, data any) {
	MustWrite(w, binary.BigEndian, data)
}

// MustWriteRaw writes p as is.
func MustWriteRaw(w io.Writer, p []byte) {
	_, err := w.Write(p)
	thrower.ThrowIfError(err)
}

// MustRead wraps binary.Read.  Running out of input throws ErrShortRead.
func MustRead(r io.Reader, order binary.ByteOrder, data any) {
	mustRead(binary.Read(r, order, data))
}

// MustReadBE is MustRead in big-endian order.
func MustReadBE(r io.Reader, data any) {
	MustRead(r, binary.BigEndian, data)
}

func MustRead16(r io.Reader) uint16 {
	var b [2]byte
	_, err := io.ReadFull(r, b[:])
	mustRead(err)
	return binary.BigEndian.Uint16(b[:])
}

func MustRead32(r io.Reader) uint32 {
	var b [4]byte
	_, err := io.ReadFull(r, b[:])
	mustRead(err)
	return binary.BigEndian.Uint32(b[:])
}

// MustReadBytes reads exactly n bytes.
func MustReadBytes(r io.Reader, n int) []byte {
	b := make([]byte, n)
	_, err := io.ReadFull(r, b)
	mustRead(err)
	return b
}

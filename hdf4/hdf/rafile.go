package hdf

import (
	"io"
	"sync"
)

// Random access file: reads at absolute offsets on a shared handle.
type raFile struct {
	file   io.ReadSeeker
	size   int64
	closed bool
	lock   sync.Mutex
}

func newRaFile(file io.ReadSeeker) (*raFile, error) {
	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	return &raFile{file: file, size: size}, nil
}

// readAt reads exactly length bytes at offset, throwing if that is not
// possible.
func (f *raFile) readAt(offset int64, length int64) []byte {
	f.lock.Lock()
	defer f.lock.Unlock()
	assertError(!f.closed, ErrClosed, "read after close")
	assertError(offset >= 0 && length >= 0 && offset+length <= f.size,
		ErrTruncated, "element past end of file")
	b := make([]byte, length)
	_, err := f.file.Seek(offset, io.SeekStart)
	if err != nil {
		logger.Error("Seek error in readAt", err, offset)
		failError(ErrTruncated, err.Error())
	}
	_, err = io.ReadFull(f.file, b)
	if err != nil {
		logger.Error("Read error in readAt", err, offset)
		failError(ErrTruncated, err.Error())
	}
	return b
}

func (f *raFile) Close() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	if c, ok := f.file.(io.Closer); ok {
		logger.Info("Closing file")
		return c.Close()
	}
	return nil
}

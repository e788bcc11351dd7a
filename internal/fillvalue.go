// Internal API, not to be exported
package internal

// FillBytes returns size bytes holding pattern over and over, cut off at
// size.  HDF4 reads data elements that were never written back this way,
// with the encoded fill value as the pattern.  An empty pattern fills with
// zeros.
func FillBytes(pattern []byte, size int) []byte {
	b := make([]byte, size)
	if len(pattern) == 0 || size == 0 {
		return b
	}
	n := copy(b, pattern)
	for n < size {
		n += copy(b[n:], b[:n])
	}
	return b
}

package random

import "io"

// SetReaderForTesting sets the reader used by New(nil).
// This is intended for testing only. Returns a function to restore the original reader.
// Since this package is internal, this function cannot be accessed by external code.
func SetReaderForTesting(r io.Reader) func() {
	original := defaultReader
	defaultReader = r
	return func() { defaultReader = original }
}

package compress

import "fmt"

// Compress encodes article text for storage and decodes it on read. The
// codec name is recorded on each version row so historical rows stay readable
// after the configured default changes.
type Compress interface {
	Name() string
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

const (
	AlgoNone   = ""
	AlgoGZip   = "gzip"
	AlgoBrotli = "brotli"
	AlgoLZ4    = "lz4"
)

// ForAlgo resolves a codec by its recorded name.
func ForAlgo(name string) (Compress, error) {
	switch name {
	case AlgoNone, "nop":
		return NewNop(), nil
	case AlgoGZip:
		return NewGZip(), nil
	case AlgoBrotli:
		return NewBrotli(), nil
	case AlgoLZ4:
		return NewLZ4(), nil
	}

	return nil, fmt.Errorf("unknown compression algorithm: %q", name)
}

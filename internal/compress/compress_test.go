package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForAlgo(t *testing.T) {
	for _, name := range []string{AlgoNone, AlgoGZip, AlgoBrotli, AlgoLZ4} {
		codec, err := ForAlgo(name)
		assert.NoError(t, err)
		assert.Equal(t, name, codec.Name())

		text := []byte("Art. 80. The parties shall perform their obligations in good faith.")
		encoded, err := codec.Encode(text)
		assert.NoError(t, err)

		decoded, err := codec.Decode(encoded)
		assert.NoError(t, err)
		assert.Equal(t, text, decoded)
	}

	_, err := ForAlgo("zstd")
	assert.Error(t, err)
}

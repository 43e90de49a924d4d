package checksum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesDeterministic(t *testing.T) {
	data := []byte("compressed line position storage")
	require.Equal(t, Bytes(data), Bytes(data))
}

func TestBytesDiffer(t *testing.T) {
	require.NotEqual(t, Bytes([]byte("a")), Bytes([]byte("b")))
}

func TestDigestMatchesSingleWrite(t *testing.T) {
	a := []byte("block-one-bytes")
	b := []byte("block-two-bytes")

	d := New()
	d.Write(a)
	d.Write(b)

	single := Bytes(append(append([]byte{}, a...), b...))
	require.Equal(t, single, d.Sum64())
}

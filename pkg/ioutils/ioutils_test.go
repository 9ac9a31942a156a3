package ioutils_test

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkbot-reloaded/go-httputil/pkg/ioutils"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}

func TestRead(t *testing.T) {
	t.Parallel()

	out, err := ioutils.Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "", out)

	out, err = ioutils.Read(strings.NewReader("žluťoučký kůň"))
	require.NoError(t, err)
	assert.Equal(t, "žluťoučký kůň", out)

	// Longer than the read buffer
	long := strings.Repeat("abcdefgh", 1000)
	out, err = ioutils.Read(strings.NewReader(long))
	require.NoError(t, err)
	assert.Equal(t, long, out)

	// Invalid UTF-8
	out, err = ioutils.Read(strings.NewReader("a\xffb"))
	require.NoError(t, err)
	assert.Equal(t, "a�b", out)
}

func TestRead_SmallChunks(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("žluťoučký kůň ", 200)
	out, err := ioutils.Read(iotest.OneByteReader(strings.NewReader(long)))
	require.NoError(t, err)
	assert.Equal(t, long, out)

	out, err = ioutils.Read(iotest.DataErrReader(iotest.HalfReader(strings.NewReader(long))))
	require.NoError(t, err)
	assert.Equal(t, long, out)
}

func TestRead_Error(t *testing.T) {
	t.Parallel()
	_, err := ioutils.Read(failingReader{})
	assert.EqualError(t, err, "read failed")
}

func TestWrite(t *testing.T) {
	t.Parallel()
	var out strings.Builder
	require.NoError(t, ioutils.Write(&out, "foo"))
	require.NoError(t, ioutils.Write(&out, " bar"))
	assert.Equal(t, "foo bar", out.String())
}

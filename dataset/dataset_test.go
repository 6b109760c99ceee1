package dataset

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "ref.zst")
	frames := [][]float64{
		{0, 0, 0, 1.54, 0, 0},
		{0.1, -0.2, 0.3, 1.5399999999999998, 1e-17, -2.5},
		{4, 5, 6, 7, 8, 9},
	}
	W, err := NewWriter(name, 6, map[string]string{"mol": "dialanine", "temp": "300"})
	require.NoError(t, err)
	for _, f := range frames {
		require.NoError(t, W.WNext(f))
	}
	assert.Error(t, W.WNext([]float64{1}), "wrong frame size must fail")
	W.Close()
	assert.Error(t, W.WNext(frames[0]), "writing after Close must fail")

	R, header, err := New(name)
	require.NoError(t, err)
	assert.Equal(t, "dialanine", header["mol"])
	assert.Equal(t, "300", header["temp"])
	assert.Equal(t, 6, R.Cols())
	assert.True(t, R.Readable())
	got := make([]float64, 6)
	for _, f := range frames {
		require.NoError(t, R.Next(got))
		assert.Equal(t, f, got)
	}
	assert.Equal(t, io.EOF, R.Next(got))
	R.Close()
	assert.False(t, R.Readable())
}

func TestLoad(t *testing.T) {
	name := filepath.Join(t.TempDir(), "ref.zst")
	W, err := NewWriter(name, 3, nil)
	require.NoError(t, err)
	require.NoError(t, W.WNext([]float64{1, 2, 3}))
	require.NoError(t, W.WNext([]float64{4, 5, 6}))
	W.Close()

	m, err := Load(name, 3)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 6.0, m.At(1, 2))

	_, err = Load(name, 9)
	assert.Error(t, err, "column mismatch must fail")
	_, err = Load(filepath.Join(t.TempDir(), "nope.zst"), 3)
	assert.Error(t, err)

	//a file with no header lines reads back with a nil header map
	R, header, err := New(name)
	require.NoError(t, err)
	assert.Nil(t, header)
	R.Close()
}

func TestWriterErrors(t *testing.T) {
	_, err := NewWriter(filepath.Join(t.TempDir(), "bad.zst"), 0, nil)
	assert.Error(t, err, "zero columns must fail")
	var e Error
	if assert.ErrorAs(t, err, &e) {
		assert.Contains(t, e.FileName(), "bad.zst")
		assert.NotEmpty(t, e.Decorate(""))
	}
}

//go:build unix

package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// scriptedReader returns one scripted result per Read call.
type scriptedReader struct {
	steps []readStep
	calls int
}

type readStep struct {
	data []byte
	err  error
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if r.calls >= len(r.steps) {
		return 0, io.EOF
	}

	step := r.steps[r.calls]
	r.calls++

	n := copy(p, step.data)

	return n, step.err
}

func TestReadFull_RetriesTransientErrors(t *testing.T) {
	r := &scriptedReader{steps: []readStep{
		{data: []byte("ab")},
		{err: unix.EINTR},
		{err: unix.EAGAIN},
		{data: []byte("cd")},
	}}

	buf := make([]byte, 4)
	n, err := ReadFull(r, buf)

	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte("abcd"), buf)
	require.Equal(t, 4, r.calls)
}

func TestReadFull_ShortReadOnClose(t *testing.T) {
	r := &scriptedReader{steps: []readStep{{data: []byte("ab")}}}

	buf := make([]byte, 4)
	n, err := ReadFull(r, buf)

	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Equal(t, 2, n)
}

func TestReadFull_CleanEOF(t *testing.T) {
	n, err := ReadFull(bytes.NewReader(nil), make([]byte, 4))

	require.ErrorIs(t, err, io.EOF)
	require.Zero(t, n)
}

func TestReadFull_DataWithEOF(t *testing.T) {
	r := &scriptedReader{steps: []readStep{{data: []byte("abcd"), err: io.EOF}}}

	n, err := ReadFull(r, make([]byte, 4))

	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func TestReadFull_FatalError(t *testing.T) {
	root := errors.New("connection reset")
	r := &scriptedReader{steps: []readStep{{err: root}}}

	_, err := ReadFull(r, make([]byte, 4))

	require.ErrorIs(t, err, root)
}

func TestReadFull_NoProgress(t *testing.T) {
	steps := make([]readStep, maxZeroProgress)
	r := &scriptedReader{steps: steps}

	_, err := ReadFull(r, make([]byte, 1))

	require.ErrorIs(t, err, io.ErrNoProgress)
}

// flakyWriter accepts at most chunk bytes per call and fails every other call
// with a transient error.
type flakyWriter struct {
	buf   bytes.Buffer
	chunk int
	calls int
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	w.calls++
	if w.calls%2 == 0 {
		return 0, unix.EINTR
	}

	if len(p) > w.chunk {
		p = p[:w.chunk]
	}

	return w.buf.Write(p)
}

func TestWriteFull_RetriesPartialAndTransient(t *testing.T) {
	w := &flakyWriter{chunk: 3}

	err := WriteFull(w, []byte("hello world"))

	require.NoError(t, err)
	require.Equal(t, "hello world", w.buf.String())
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestWriteFull_FatalError(t *testing.T) {
	root := errors.New("broken pipe")

	err := WriteFull(failingWriter{err: root}, []byte("x"))

	require.ErrorIs(t, err, root)
}

func TestIsTransient(t *testing.T) {
	require.True(t, IsTransient(unix.EINTR))
	require.True(t, IsTransient(unix.EAGAIN))
	require.False(t, IsTransient(io.EOF))
	require.False(t, IsTransient(errors.New("other")))
}

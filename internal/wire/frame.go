package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	inserrors "github.com/wagiedev/nmz-inspector-go/internal/errors"
	"github.com/wagiedev/nmz-inspector-go/internal/stream"
)

const (
	// HeaderSize is the size of the frame length prefix.
	HeaderSize = 4
	// MaxFrameSize bounds the body announced by a frame header.
	MaxFrameSize = 16 << 20 // 16MB
)

// WriteFrame writes body prefixed with its length as one buffer.
//
// Callers sharing w across goroutines must serialize calls.
func WriteFrame(w io.Writer, body []byte) error {
	if len(body) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", inserrors.ErrFrameTooLarge, len(body))
	}

	buf := make([]byte, HeaderSize+len(body))
	binary.LittleEndian.PutUint32(buf, uint32(len(body)))
	copy(buf[HeaderSize:], body)

	return stream.WriteFull(w, buf)
}

// ReadFrame reads one frame and returns its body.
//
// It returns io.EOF if the stream closed cleanly before a header started and
// io.ErrUnexpectedEOF if it closed mid-frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [HeaderSize]byte

	if _, err := stream.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	size := binary.LittleEndian.Uint32(hdr[:])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: header announces %d bytes", inserrors.ErrFrameTooLarge, size)
	}

	body := make([]byte, size)

	if _, err := stream.ReadFull(r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}

		return nil, err
	}

	return body, nil
}

// WriteRequest encodes and frames req.
func WriteRequest(w io.Writer, req *Request) error {
	body, err := MarshalRequest(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	return WriteFrame(w, body)
}

// ReadRequest reads and decodes one Request frame.
func ReadRequest(r io.Reader) (*Request, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}

	return UnmarshalRequest(body)
}

// WriteResponse encodes and frames rsp.
func WriteResponse(w io.Writer, rsp *Response) error {
	body, err := MarshalResponse(rsp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	return WriteFrame(w, body)
}

// ReadResponse reads and decodes one Response frame.
func ReadResponse(r io.Reader) (*Response, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}

	return UnmarshalResponse(body)
}

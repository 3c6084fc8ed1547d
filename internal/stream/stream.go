package stream

import (
	"errors"
	"io"
)

// maxZeroProgress bounds consecutive (0, nil) results before a read or write
// is reported as stalled.
const maxZeroProgress = 100

// ReadFull reads exactly len(buf) bytes from r.
//
// It returns the number of bytes read. If the peer closes the stream before
// buf is filled, ReadFull returns the short count with io.EOF when nothing was
// read or io.ErrUnexpectedEOF otherwise.
func ReadFull(r io.Reader, buf []byte) (int, error) {
	read := 0
	idle := 0

	for read < len(buf) {
		n, err := r.Read(buf[read:])
		read += n

		if err != nil {
			if IsTransient(err) {
				continue
			}

			if errors.Is(err, io.EOF) {
				if read == len(buf) {
					return read, nil
				}

				if read == 0 {
					return 0, io.EOF
				}

				return read, io.ErrUnexpectedEOF
			}

			return read, err
		}

		if n == 0 {
			idle++
			if idle >= maxZeroProgress {
				return read, io.ErrNoProgress
			}

			continue
		}

		idle = 0
	}

	return read, nil
}

// WriteFull writes all of buf to w.
func WriteFull(w io.Writer, buf []byte) error {
	written := 0
	idle := 0

	for written < len(buf) {
		n, err := w.Write(buf[written:])
		written += n

		if err != nil {
			if IsTransient(err) {
				continue
			}

			return err
		}

		if n == 0 {
			idle++
			if idle >= maxZeroProgress {
				return io.ErrShortWrite
			}

			continue
		}

		idle = 0
	}

	return nil
}

package storage

import (
	"io"

	"github.com/ethereum/go-ethereum/log"
)

type loggingWriter struct {
	io.WriteCloser
	key string
	n   int64
}

// NewLoggingWriter wraps an artifact writer and logs the byte count when the
// upload completes.
func NewLoggingWriter(w io.WriteCloser, key string) io.WriteCloser {
	return &loggingWriter{WriteCloser: w, key: key}
}

func (w *loggingWriter) Write(b []byte) (int, error) {
	n, err := w.WriteCloser.Write(b)
	w.n += int64(n)
	return n, err
}

func (w *loggingWriter) Close() error {
	err := w.WriteCloser.Close()
	log.Info("Stored artifact", "key", w.key, "bytes", w.n, "error", err)
	return err
}

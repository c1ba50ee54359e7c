package storage

import (
	"io"
)

// Storage retains pipeline artifacts (verifier sources, bytecode) at
// caller-visible keys so failed runs leave something to inspect.
type Storage interface {
	Reader(key string) (io.ReadCloser, error)
	Writer(key string) (io.WriteCloser, error)
}

// WriteBytes stores a complete artifact under key.
func WriteBytes(s Storage, key string, data []byte) error {
	w, err := s.Writer(key)
	if err != nil {
		return err
	}
	if _, err = w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

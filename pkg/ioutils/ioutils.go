// Package ioutils contains helpers for request and response streams.
package ioutils

import (
	"bytes"
	"io"
	"unicode/utf8"
)

// Write writes the string to the writer.
func Write(w io.Writer, str string) error {
	_, err := io.WriteString(w, str)
	return err
}

// Read drains the reader and returns the content decoded as UTF-8.
// Invalid UTF-8 sequences are replaced by the utf8.RuneError character.
func Read(r io.Reader) (string, error) {
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		return "", err
	}
	if utf8.Valid(out.Bytes()) {
		return out.String(), nil
	}
	return string(bytes.ToValidUTF8(out.Bytes(), []byte(string(utf8.RuneError)))), nil
}

// Package textenc implements the engine's text-encoding capability, built on
// golang.org/x/text so file content can round-trip through encodings other
// than UTF-8 without hand-rolling codec tables.
package textenc

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Encoding converts between a file's on-disk byte representation and its
// in-memory text representation.
type Encoding struct {
	name string
	enc  encoding.Encoding
}

// Default is UTF-8, used whenever a file and the engine both leave encoding
// unspecified.
var Default = Encoding{name: "utf-8"}

// Lookup resolves a named encoding (e.g. "utf-8", "utf-16le", "iso-8859-1")
// via the WHATWG encoding labels recognized by golang.org/x/text.
func Lookup(name string) (Encoding, error) {
	if name == "" || name == "utf-8" || name == "utf8" {
		return Default, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return Encoding{}, fmt.Errorf("textenc: unknown encoding %q: %w", name, err)
	}
	return Encoding{name: name, enc: enc}, nil
}

// Name returns the name the encoding was looked up by ("utf-8" for the
// default).
func (e Encoding) Name() string {
	if e.name == "" {
		return "utf-8"
	}
	return e.name
}

// Decode converts raw bytes to text using this encoding.
func (e Encoding) Decode(raw []byte) (string, error) {
	if e.enc == nil {
		return string(raw), nil
	}
	decoded, err := e.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("textenc: decode with %q: %w", e.Name(), err)
	}
	return string(decoded), nil
}

// Encode converts text to raw bytes using this encoding.
func (e Encoding) Encode(text string) ([]byte, error) {
	if e.enc == nil {
		return []byte(text), nil
	}
	encoded, err := e.enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("textenc: encode with %q: %w", e.Name(), err)
	}
	return encoded, nil
}

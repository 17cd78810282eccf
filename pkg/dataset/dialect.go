package dataset

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Dialect describes how a delimited text file is laid out on disk.
type Dialect struct {
	// Delimiter is the field separator.
	Delimiter rune
	// Encoding is the text encoding name. Empty means UTF-8.
	Encoding string
}

// Normalized is the dialect every stage artifact is written in.
var Normalized = Dialect{Delimiter: ',', Encoding: "utf-8"}

// String returns a short description such as `";" latin-1`.
func (d Dialect) String() string {
	enc := d.Encoding
	if enc == "" {
		enc = "utf-8"
	}
	return fmt.Sprintf("%q %s", string(d.Delimiter), enc)
}

// Validate checks that the delimiter and encoding are usable.
func (d Dialect) Validate() error {
	if d.Delimiter == 0 || d.Delimiter == '"' || d.Delimiter == '\r' || d.Delimiter == '\n' ||
		!utf8.ValidRune(d.Delimiter) || d.Delimiter == utf8.RuneError {
		return fmt.Errorf("invalid delimiter %q", string(d.Delimiter))
	}
	if _, err := LookupEncoding(d.Encoding); err != nil {
		return err
	}
	return nil
}

// encodingAliases covers the spellings people actually write in config files
// that are not IANA names.
var encodingAliases = map[string]encoding.Encoding{
	"":           unicode.UTF8,
	"utf-8":      unicode.UTF8,
	"utf8":       unicode.UTF8,
	"utf-8-sig":  unicode.UTF8BOM,
	"latin-1":    charmap.ISO8859_1,
	"latin1":     charmap.ISO8859_1,
	"iso-8859-1": charmap.ISO8859_1,
	"cp1252":     charmap.Windows1252,
}

// LookupEncoding resolves an encoding by name. Besides the aliases above, any
// IANA charset name supported by golang.org/x/text is accepted.
func LookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if enc, ok := encodingAliases[key]; ok {
		return enc, nil
	}

	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// ParseDelimiter converts a configured delimiter into a rune. It accepts a
// single character or one of the names "tab", "comma", "semicolon", "pipe".
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

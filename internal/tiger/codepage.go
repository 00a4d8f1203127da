package tiger

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// codePages maps the values ESRI tools write into .cpg files to an encoding.
// A nil entry means UTF-8.
var codePages = map[string]encoding.Encoding{
	"UTF-8":        nil,
	"UTF8":         nil,
	"65001":        nil,
	"ISO-8859-1":   charmap.ISO8859_1,
	"ISO88591":     charmap.ISO8859_1,
	"88591":        charmap.ISO8859_1,
	"LATIN1":       charmap.ISO8859_1,
	"1252":         charmap.Windows1252,
	"ANSI 1252":    charmap.Windows1252,
	"CP1252":       charmap.Windows1252,
	"WINDOWS-1252": charmap.Windows1252,
}

// textDecoder returns the function used to turn raw .dbf text into UTF-8.
// Without a recognised code page, valid UTF-8 passes through and anything
// else is read as Latin-1, the pre-2008 TIGER encoding.
func textDecoder(cpg string) func(string) string {
	key := strings.ToUpper(strings.TrimSpace(cpg))
	enc, known := codePages[key]
	if !known && key != "" {
		if e, err := ianaindex.IANA.Encoding(key); err == nil && e != nil {
			enc, known = e, true
		}
	}

	if known && enc == nil {
		return func(s string) string { return s }
	}
	if !known {
		enc = charmap.ISO8859_1
	}

	dec := enc.NewDecoder()
	return func(s string) string {
		if !known && utf8.ValidString(s) {
			return s
		}
		out, err := dec.String(s)
		if err != nil {
			return s
		}
		return out
	}
}

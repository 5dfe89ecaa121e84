// Package click parses pointer-event notifications from the bar and
// attributes them to status line blocks.
package click

import "bytes"

// Field locates the value of key inside a raw notification buffer and
// returns its byte span (start offset and length), or (0, 0) when the
// key is absent. It works on malformed or truncated buffers: a string
// value cut off mid-way spans to the end of the buffer.
//
// The notification layout is a flat JSON-ish record with known keys, so
// a quoted-key scan is sufficient; Field is never asked to navigate
// nested structures.
func Field(buf []byte, key string) (start, n int) {
	needle := make([]byte, 0, len(key)+2)
	needle = append(needle, '"')
	needle = append(needle, key...)
	needle = append(needle, '"')

	i := bytes.Index(buf, needle)
	if i < 0 {
		return 0, 0
	}
	i += len(needle)

	// Skip to the value past the separating colon.
	for i < len(buf) && (buf[i] == ' ' || buf[i] == '\t' || buf[i] == ':') {
		i++
	}
	if i >= len(buf) {
		return 0, 0
	}

	if buf[i] == '"' {
		i++
		end := i
		for end < len(buf) && buf[end] != '"' {
			if buf[end] == '\\' && end+1 < len(buf) {
				end++
			}
			end++
		}
		return i, end - i
	}

	// Bare value (number, boolean): runs until a delimiter.
	end := i
	for end < len(buf) && !isDelim(buf[end]) {
		end++
	}
	return i, end - i
}

func isDelim(c byte) bool {
	switch c {
	case ',', '}', ']', ' ', '\t', '\n', '\r', 0:
		return true
	}
	return false
}

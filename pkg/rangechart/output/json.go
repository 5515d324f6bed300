// Package output serializes chart state for machine consumers.
package output

import (
	"bytes"
	"encoding/json"
)

// ToJSON serializes v to JSON. HTML characters are left unescaped so
// category labels round-trip as written.
func ToJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

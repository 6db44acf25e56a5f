package functions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Response is the serverless envelope: a status code and a JSON-encoded body string.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type messageBody struct {
	Message string `json:"message"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
}

type scheduledBody struct {
	Message string `json:"message"`
	Rows    int    `json:"rows"`
}

func respond(status int, body any) Response {
	encoded, err := dumps(body)
	if err != nil {
		status = 500
		encoded = fmt.Sprintf(`{"message": "An error occurred", "error": %q}`, err.Error())
	}
	return Response{StatusCode: status, Body: encoded}
}

// dumps renders v as JSON with ", " and ": " separators and ASCII-only
// output, the formatting clients of these functions already compare against.
func dumps(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(spaceSeparators(bytes.TrimRight(buf.Bytes(), "\n"))), nil
}

func spaceSeparators(compact []byte) []byte {
	out := make([]byte, 0, len(compact)+len(compact)/8)
	inString, escaped := false, false

	for i := 0; i < len(compact); {
		c := compact[i]

		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRune(compact[i:])
			out = appendEscapedRune(out, r)
			i += size
			continue
		}

		out = append(out, c)
		i++

		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && (c == ',' || c == ':'):
			out = append(out, ' ')
		}
	}
	return out
}

func appendEscapedRune(out []byte, r rune) []byte {
	if r > 0xFFFF {
		r -= 0x10000
		hi := 0xD800 + (r>>10)&0x3FF
		lo := 0xDC00 + r&0x3FF
		return fmt.Appendf(out, `\u%04x\u%04x`, hi, lo)
	}
	return fmt.Appendf(out, `\u%04x`, r)
}

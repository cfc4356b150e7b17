package service

import (
	"errors"
	"strings"
)

// ErrJSONNotFound means the reply contained no {...} span at all
var ErrJSONNotFound = errors.New("no JSON object found in response")

// ExtractJSON returns the text between the first '{' and the last '}',
// braces included. Braces are not balanced; a malformed span is left for
// the JSON parser to reject.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrJSONNotFound
	}
	end := strings.LastIndexByte(text, '}')
	if end < start {
		return "", ErrJSONNotFound
	}
	return text[start : end+1], nil
}

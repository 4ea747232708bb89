package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when model output contains no JSON object
var ErrNoJSON = errors.New("no JSON object in model output")

// DecodeJSON decodes the first JSON object in model output into v.
// Code fences and leading/trailing commentary are tolerated.
func DecodeJSON(text string, v any) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

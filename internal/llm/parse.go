package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseJSONObject extracts the first JSON object from a model response
// and unmarshals it into v. Models occasionally wrap the object in
// prose or code fences; everything outside the outermost braces is
// ignored.
func parseJSONObject(response string, v any) error {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in response")
	}

	if err := json.Unmarshal([]byte(response[start:end+1]), v); err != nil {
		return fmt.Errorf("parse decision: %w", err)
	}
	return nil
}

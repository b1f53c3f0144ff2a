package reservations

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

// SubmissionError carries the human-readable message extracted from a
// reservation API error response.
type SubmissionError struct {
	Message string
}

func (e *SubmissionError) Error() string { return e.Message }

const fallbackMessage = "Something went wrong."

// ExtractMessage pulls a displayable message out of an error payload. The
// backend's error shapes are inconsistent, so the precedence is fixed:
// a non_field_errors array wins, then a detail string, then the raw payload
// itself. Any shape must produce a message; this never fails.
func ExtractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fallbackMessage
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		if raw, ok := payload["non_field_errors"]; ok {
			if msgs := cast.ToStringSlice(raw); len(msgs) > 0 && msgs[0] != "" {
				return msgs[0]
			}
		}
		if raw, ok := payload["detail"]; ok {
			if msg := cast.ToString(raw); msg != "" {
				return msg
			}
		}
		return trimmed
	}

	// Not an object: the payload may still be a bare JSON string.
	var s string
	if err := json.Unmarshal(body, &s); err == nil && s != "" {
		return s
	}
	return trimmed
}

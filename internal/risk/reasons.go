package risk

import (
	"encoding/json"
	"fmt"
	"strings"
)

// marshalReasons serializes the structured reason list for the decision row.
func marshalReasons(reasons []Reason) (string, error) {
	blob, err := json.Marshal(reasons)
	if err != nil {
		return "", fmt.Errorf("marshal reasons: %w", err)
	}
	return string(blob), nil
}

// ParseReasons decodes a persisted reason blob back into its structured form.
func ParseReasons(blob string) ([]Reason, error) {
	var reasons []Reason
	if err := json.Unmarshal([]byte(blob), &reasons); err != nil {
		return nil, fmt.Errorf("parse reasons: %w", err)
	}
	return reasons, nil
}

// SummarizeReasons renders a flat pipe-delimited view of a reason list for
// human-facing output. The stored representation stays structured.
func SummarizeReasons(reasons []Reason) string {
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Type, r.Description))
	}
	return strings.Join(parts, " | ")
}

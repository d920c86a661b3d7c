package criteria

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/trialmatch/ai"
	"github.com/poiesic/trialmatch/core"
)

// ExtractCriteria reads the span from the first '{' to the last '}' in text as
// a JSON object with "inclusion" and "exclusion" keys.
//
// It reports false when no object could be decoded; the returned criteria are
// then empty. A key that is missing or not a list yields an empty list.
// Non-string list items are rendered with fmt so nested structures are kept
// as statements rather than dropped.
func ExtractCriteria(text string) (core.ParsedCriteria, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return core.ParsedCriteria{}, false
	}
	candidate := text[start : end+1]

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		// Small models often drop the opening quote on keys.
		if err := json.Unmarshal([]byte(ai.RepairJSON(candidate)), &obj); err != nil {
			return core.ParsedCriteria{}, false
		}
	}

	return core.ParsedCriteria{
		Inclusion: statements(obj["inclusion"]),
		Exclusion: statements(obj["exclusion"]),
	}, true
}

func statements(v any) []string {
	switch items := v.(type) {
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			var s string
			switch x := item.(type) {
			case string:
				s = x
			case nil:
				continue
			default:
				b, err := json.Marshal(x)
				if err != nil {
					s = fmt.Sprint(x)
				} else {
					s = string(b)
				}
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(items); s != "" {
			return []string{s}
		}
	}
	return []string{}
}

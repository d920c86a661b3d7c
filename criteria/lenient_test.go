package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCriteria(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantOK        bool
		wantInclusion []string
		wantExclusion []string
	}{
		{
			name:          "braces reversed",
			text:          "} nothing here {",
			wantOK:        false,
			wantInclusion: nil,
			wantExclusion: nil,
		},
		{
			name:          "missing keys",
			text:          `{"other": 1}`,
			wantOK:        true,
			wantInclusion: []string{},
			wantExclusion: []string{},
		},
		{
			name:          "string instead of list",
			text:          `{"inclusion": "Adults with asthma", "exclusion": null}`,
			wantOK:        true,
			wantInclusion: []string{"Adults with asthma"},
			wantExclusion: []string{},
		},
		{
			name:          "nested objects kept as json",
			text:          `{"inclusion": [{"min_age": 18}, "  ", "BMI over 30"], "exclusion": [null]}`,
			wantOK:        true,
			wantInclusion: []string{`{"min_age":18}`, "BMI over 30"},
			wantExclusion: []string{},
		},
		{
			name:          "missing key quote repaired",
			text:          `{inclusion": ["Asthma"], "exclusion": []}`,
			wantOK:        true,
			wantInclusion: []string{"Asthma"},
			wantExclusion: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCriteria(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantInclusion, got.Inclusion)
			assert.Equal(t, tt.wantExclusion, got.Exclusion)
		})
	}
}

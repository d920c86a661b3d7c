package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

const entityPromptTemplate = `Extract the biomedical named entities from the given clinical text and return them as JSON.

Output ONLY valid JSON. Do not include any preamble, explanation, greeting, or acknowledgment.
Start your response directly with the opening brace { and end with the closing brace }.

The output must have this shape:
{"entities": [{"word": "<entity text exactly as written>", "type": "<entity type>"}]}

Rules:
- Type field must match exactly one of the listed values: %s.
- Copy entity words verbatim from the text. Do not normalize, expand abbreviations, or translate.
- Include only entities explicitly mentioned in the text. Do not hallucinate.
- If no entities can be identified, return {"entities": []}.

Example:
Input: "Patient has a condition of Essential hypertension. Patient is prescribed lisinopril 10 MG Oral Tablet."
Output:
{"entities": [
  {"word": "Essential hypertension", "type": "Disease_disorder"},
  {"word": "lisinopril", "type": "Medication"},
  {"word": "10 MG", "type": "Dosage"}
]}`

// EntityExtractionPrompt returns the system prompt used by completion-backed entity extractors.
func EntityExtractionPrompt() string {
	return fmt.Sprintf(entityPromptTemplate, strings.Join(EntityTypes, ", "))
}

type entityResponse struct {
	Entities []struct {
		Word string `json:"word"`
		Type string `json:"type"`
	} `json:"entities"`
}

// ParseEntityResponse decodes a model response produced from EntityExtractionPrompt.
// Code fences and unquoted keys are repaired before decoding. Blank words are dropped.
func ParseEntityResponse(text string) ([]string, error) {
	text = RepairJSON(StripCodeFences(text))

	var resp entityResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, err
	}

	words := make([]string, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		if w := strings.TrimSpace(e.Word); w != "" {
			words = append(words, w)
		}
	}
	return words, nil
}

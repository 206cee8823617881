package openai

import (
	"fmt"
	"strings"

	"github.com/Jash2606/vector-graph-retrieval-app/ai"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {
            "type": "string"
          },
          "type": {
            "type": "string"
          }
        },
        "required": ["name", "type"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Extract the named entities mentioned in the given text and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- The name field is the entity exactly as it appears in the text, with original capitalization.
- The type field must match exactly one of the listed values: %s.
- Years and calendar references are "date" entities.
- Include only entities explicitly mentioned in the text. Do not hallucinate.
- Do not repeat an entity that appears more than once.
- If no entities can be identified, return "entities": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Albert Einstein was born in Germany in 1879."
Output:
{
  "entities": [
    {"name":"Albert Einstein","type":"person"},
    {"name":"Germany","type":"location"},
    {"name":"1879","type":"date"}
  ]
}

Example (organizations):
Input: "CERN published the dataset together with MIT."
Output:
{
  "entities": [
    {"name":"CERN","type":"organization"},
    {"name":"MIT","type":"organization"}
  ]
}

Example (nothing to extract):
Input: "it was a quiet afternoon"
Output:
{
  "entities": []
}`

// buildSystemPrompt creates the system prompt with entity types embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate,
		extractionResponseSchema,
		strings.Join(ai.EntityTypeNames, ", "))
}

package structured

import "strings"

// BuildInitialPrompt creates the system prompt for the first generation
// attempt: a fixed instruction block demanding JSON-only output, followed
// by the canonical schema and, when non-empty, the caller-supplied extra
// context. Identical inputs always produce identical prompts.
func BuildInitialPrompt(extraContext string, schema *JSONSchema) string {
	var sb strings.Builder

	sb.WriteString("You are a helpful assistant that generates structured JSON output.\n\n")
	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. You MUST respond with valid JSON that conforms to the schema below.\n")
	sb.WriteString("2. Do NOT include any text before or after the JSON.\n")
	sb.WriteString("3. Do NOT wrap the JSON in markdown code blocks or add comments.\n")
	sb.WriteString("4. Ensure all required properties are present.\n")
	sb.WriteString("5. Property types must match the schema exactly.\n\n")
	sb.WriteString("JSON Schema:\n")
	sb.WriteString("```json\n")
	sb.WriteString(schema.Canonical())
	sb.WriteString("\n```\n\n")
	sb.WriteString("Respond with ONLY the JSON value.")

	if extraContext != "" {
		sb.WriteString("\n\nADDITIONAL CONTEXT:\n")
		sb.WriteString(extraContext)
	}

	return sb.String()
}

// BuildCorrectivePrompt creates the system prompt for the retry attempt.
// It echoes the previous raw response and the failure reason verbatim,
// re-embeds the canonical schema, and instructs the model to return only
// the corrected JSON.
func BuildCorrectivePrompt(previousResponse, failureReason string, schema *JSONSchema) string {
	var sb strings.Builder

	sb.WriteString("Your previous response was not valid.\n\n")
	sb.WriteString("PREVIOUS RESPONSE:\n")
	sb.WriteString(previousResponse)
	sb.WriteString("\n\nPROBLEM:\n")
	sb.WriteString(failureReason)
	sb.WriteString("\n\nThe response MUST conform to this JSON Schema:\n")
	sb.WriteString("```json\n")
	sb.WriteString(schema.Canonical())
	sb.WriteString("\n```\n\n")
	sb.WriteString("Fix the response. Respond with ONLY the corrected JSON value,\n")
	sb.WriteString("no markdown fences and no commentary.")

	return sb.String()
}

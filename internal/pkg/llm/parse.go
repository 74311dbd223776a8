package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CleanJSONResponse strips markdown code fences and extracts the outermost
// JSON object from a free-text model reply. Model output routinely wraps the
// JSON in ```json fences or prose, so this runs before every decode.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response // No JSON found, return as is
	}

	// Track the last position where the brace count returns to zero. When
	// prose after the object carries braces of its own, the cut runs through
	// them and the decode fails, which is what routes such replies to the
	// fallback path instead of a partial parse.
	braceCount := 0
	lastValidBrace := -1
	for i := firstBrace; i < len(response); i++ {
		switch response[i] {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				lastValidBrace = i
			}
		}
	}

	if lastValidBrace == -1 {
		// Fallback to last brace method if brace counting fails
		lastBrace := strings.LastIndex(response, "}")
		if lastBrace == -1 || lastBrace <= firstBrace {
			return response // No valid JSON structure found
		}
		lastValidBrace = lastBrace
	}

	return strings.TrimSpace(response[firstBrace : lastValidBrace+1])
}

// DecodeJSONObject cleans a model reply and decodes it into v.
func DecodeJSONObject(response string, v any) error {
	cleaned := CleanJSONResponse(response)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("decoding model reply: %w", err)
	}
	return nil
}

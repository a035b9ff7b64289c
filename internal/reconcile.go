package internal

import (
	"fmt"
	"strings"
)

// File upload limits enforced on outgoing messages.
const (
	MaxFileSize = 2 * 1024 * 1024 // decoded bytes per file
	MaxFiles    = 5
)

// Diagram-producing tools whose historical payloads are redundant once the
// current diagram XML is in context.
const (
	ToolDisplayDiagram = "display_diagram"
	ToolEditDiagram    = "edit_diagram"
)

// ToolInputPlaceholder replaces historical diagram tool payloads.
const ToolInputPlaceholder = "[XML content replaced - see current diagram XML in system context]"

// ReplaceHistoricalToolInputs rewrites a raw model-bound message log so that
// historical diagram tool calls no longer carry their full XML payloads.
// Tool calls whose input is missing, not an object, or empty are artifacts of
// an interrupted stream and are dropped outright. Everything else, including
// non-assistant messages, passes through unchanged. The function is
// idempotent: placeholders survive re-application.
func ReplaceHistoricalToolInputs(messages []map[string]interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		role, _ := msg["role"].(string)
		content, ok := msg["content"].([]interface{})
		if role != RoleAssistant || !ok {
			out = append(out, msg)
			continue
		}

		replaced := make([]interface{}, 0, len(content))
		for _, entry := range content {
			part, ok := entry.(map[string]interface{})
			if !ok || part["type"] != "tool-call" {
				replaced = append(replaced, entry)
				continue
			}
			input, isObject := part["input"].(map[string]interface{})
			if !isObject || len(input) == 0 {
				// Interrupted mid-call; unusable without its input.
				continue
			}
			toolName, _ := part["toolName"].(string)
			if toolName == ToolDisplayDiagram || toolName == ToolEditDiagram {
				clone := make(map[string]interface{}, len(part))
				for k, v := range part {
					clone[k] = v
				}
				clone["input"] = map[string]interface{}{"placeholder": ToolInputPlaceholder}
				replaced = append(replaced, clone)
				continue
			}
			replaced = append(replaced, part)
		}

		clone := make(map[string]interface{}, len(msg))
		for k, v := range msg {
			clone[k] = v
		}
		clone["content"] = replaced
		out = append(out, clone)
	}
	return out
}

// FileValidation is the outcome of ValidateFileParts.
type FileValidation struct {
	Valid bool
	Error string
}

// ValidateFileParts checks the file parts attached to the last message of a
// log against the upload limits. Sizes are computed from the base64 payload
// length without decoding.
func ValidateFileParts(messages []map[string]interface{}) FileValidation {
	if len(messages) == 0 {
		return FileValidation{Valid: true}
	}
	last := messages[len(messages)-1]
	parts, _ := last["parts"].([]interface{})

	var fileParts []map[string]interface{}
	for _, p := range parts {
		pm, ok := p.(map[string]interface{})
		if ok && pm["type"] == "file" {
			fileParts = append(fileParts, pm)
		}
	}

	if len(fileParts) > MaxFiles {
		return FileValidation{
			Error: fmt.Sprintf("Too many files. Maximum %d allowed.", MaxFiles),
		}
	}

	for _, fp := range fileParts {
		url, _ := fp["url"].(string)
		if !strings.HasPrefix(url, "data:") {
			continue
		}
		comma := strings.Index(url, ",")
		if comma < 0 || comma == len(url)-1 {
			continue
		}
		// Base64 expands by ~4/3; ceil(len*3/4) recovers the decoded size.
		encoded := len(url) - comma - 1
		decoded := (encoded*3 + 3) / 4
		if decoded > MaxFileSize {
			return FileValidation{
				Error: fmt.Sprintf("File exceeds %dMB limit.", MaxFileSize/1024/1024),
			}
		}
	}

	return FileValidation{Valid: true}
}

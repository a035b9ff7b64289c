package internal

import (
	"reflect"
	"strings"
	"testing"
)

func toolCall(toolName string, input interface{}) map[string]interface{} {
	part := map[string]interface{}{"type": "tool-call", "toolName": toolName}
	if input != nil {
		part["input"] = input
	}
	return part
}

func assistantMsg(content ...interface{}) map[string]interface{} {
	return map[string]interface{}{"role": "assistant", "content": content}
}

func TestReplaceHistoricalToolInputs_DropsEmptyInput(t *testing.T) {
	messages := []map[string]interface{}{
		assistantMsg(toolCall("display_diagram", map[string]interface{}{})),
	}
	got := ReplaceHistoricalToolInputs(messages)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	content := got[0]["content"].([]interface{})
	if len(content) != 0 {
		t.Errorf("content = %v, want empty (interrupted tool call dropped)", content)
	}
}

func TestReplaceHistoricalToolInputs_DropsMissingAndNonObjectInput(t *testing.T) {
	messages := []map[string]interface{}{
		assistantMsg(
			toolCall("display_diagram", nil),
			toolCall("edit_diagram", "a string"),
			map[string]interface{}{"type": "text", "text": "kept"},
		),
	}
	content := ReplaceHistoricalToolInputs(messages)[0]["content"].([]interface{})
	if len(content) != 1 {
		t.Fatalf("content = %v, want only the text entry", content)
	}
	text := content[0].(map[string]interface{})
	if text["type"] != "text" {
		t.Errorf("surviving entry = %v, want the text part", text)
	}
}

func TestReplaceHistoricalToolInputs_ReplacesDiagramPayloads(t *testing.T) {
	for _, tool := range []string{ToolDisplayDiagram, ToolEditDiagram} {
		messages := []map[string]interface{}{
			assistantMsg(toolCall(tool, map[string]interface{}{"xml": strings.Repeat("<cell/>", 500)})),
		}
		content := ReplaceHistoricalToolInputs(messages)[0]["content"].([]interface{})
		if len(content) != 1 {
			t.Fatalf("[%s] content length = %d, want 1", tool, len(content))
		}
		input := content[0].(map[string]interface{})["input"].(map[string]interface{})
		if input["placeholder"] != ToolInputPlaceholder {
			t.Errorf("[%s] input = %v, want placeholder", tool, input)
		}
		if _, ok := input["xml"]; ok {
			t.Errorf("[%s] original payload survived replacement", tool)
		}
	}
}

func TestReplaceHistoricalToolInputs_OtherToolsPassThrough(t *testing.T) {
	input := map[string]interface{}{"query": "find shapes"}
	messages := []map[string]interface{}{
		assistantMsg(toolCall("search_shapes", input)),
	}
	content := ReplaceHistoricalToolInputs(messages)[0]["content"].([]interface{})
	got := content[0].(map[string]interface{})
	if !reflect.DeepEqual(got["input"], input) {
		t.Errorf("foreign tool input changed: %v", got["input"])
	}
}

func TestReplaceHistoricalToolInputs_NonAssistantUntouched(t *testing.T) {
	user := map[string]interface{}{
		"role":    "user",
		"content": []interface{}{toolCall("display_diagram", map[string]interface{}{})},
	}
	system := map[string]interface{}{"role": "system", "content": "be helpful"}

	got := ReplaceHistoricalToolInputs([]map[string]interface{}{user, system})
	if !reflect.DeepEqual(got[0], user) {
		t.Errorf("user message changed: %v", got[0])
	}
	if !reflect.DeepEqual(got[1], system) {
		t.Errorf("system message changed: %v", got[1])
	}
}

func TestReplaceHistoricalToolInputs_PreservesOrder(t *testing.T) {
	messages := []map[string]interface{}{
		{"role": "user", "content": "first"},
		assistantMsg(toolCall("display_diagram", map[string]interface{}{"xml": "<x/>"})),
		{"role": "user", "content": "third"},
	}
	got := ReplaceHistoricalToolInputs(messages)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0]["content"] != "first" || got[2]["content"] != "third" {
		t.Error("message order not preserved")
	}
}

func TestReplaceHistoricalToolInputs_Idempotent(t *testing.T) {
	messages := []map[string]interface{}{
		{"role": "user", "content": "draw something"},
		assistantMsg(
			toolCall("display_diagram", map[string]interface{}{"xml": "<big/>"}),
			toolCall("edit_diagram", map[string]interface{}{}),
			toolCall("search_shapes", map[string]interface{}{"q": "box"}),
			map[string]interface{}{"type": "text", "text": "done"},
		),
	}

	once := ReplaceHistoricalToolInputs(messages)
	twice := ReplaceHistoricalToolInputs(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("not idempotent:\nonce:  %v\ntwice: %v", once, twice)
	}
}

func filePart(encodedLen int) map[string]interface{} {
	return map[string]interface{}{
		"type": "file",
		"url":  "data:image/png;base64," + strings.Repeat("A", encodedLen),
	}
}

func lastMessageWith(parts ...interface{}) []map[string]interface{} {
	return []map[string]interface{}{
		{"role": "user", "parts": []interface{}{map[string]interface{}{"type": "text", "text": "earlier"}}},
		{"role": "user", "parts": parts},
	}
}

func TestValidateFileParts_NoFiles(t *testing.T) {
	if v := ValidateFileParts(nil); !v.Valid {
		t.Errorf("ValidateFileParts(nil) = %+v, want valid", v)
	}
	v := ValidateFileParts(lastMessageWith(map[string]interface{}{"type": "text", "text": "hi"}))
	if !v.Valid {
		t.Errorf("no file parts = %+v, want valid", v)
	}
}

func TestValidateFileParts_TooMany(t *testing.T) {
	parts := make([]interface{}, 0, MaxFiles+1)
	for i := 0; i <= MaxFiles; i++ {
		parts = append(parts, filePart(100))
	}
	v := ValidateFileParts(lastMessageWith(parts...))
	if v.Valid {
		t.Fatal("6 file parts accepted")
	}
	if !strings.Contains(v.Error, "Too many files") {
		t.Errorf("error = %q, want mention of too many files", v.Error)
	}
}

func TestValidateFileParts_AtLimitIsValid(t *testing.T) {
	parts := make([]interface{}, 0, MaxFiles)
	for i := 0; i < MaxFiles; i++ {
		parts = append(parts, filePart(100))
	}
	if v := ValidateFileParts(lastMessageWith(parts...)); !v.Valid {
		t.Errorf("exactly %d files rejected: %+v", MaxFiles, v)
	}
}

func TestValidateFileParts_OversizedFile(t *testing.T) {
	// 3 MiB decoded => 4 MiB of base64.
	threeMiB := 3 * 1024 * 1024
	v := ValidateFileParts(lastMessageWith(filePart(threeMiB * 4 / 3)))
	if v.Valid {
		t.Fatal("3 MiB file accepted")
	}
	if !strings.Contains(v.Error, "exceeds") {
		t.Errorf("error = %q, want mention of exceeding the limit", v.Error)
	}
}

func TestValidateFileParts_SizeComputedFromEncodedLength(t *testing.T) {
	// Just under the limit: decoded ceil(n*3/4) == MaxFileSize exactly.
	underLimit := MaxFileSize * 4 / 3
	if v := ValidateFileParts(lastMessageWith(filePart(underLimit))); !v.Valid {
		t.Errorf("file at the limit rejected: %+v", v)
	}
	if v := ValidateFileParts(lastMessageWith(filePart(underLimit + 4))); v.Valid {
		t.Error("file just over the limit accepted")
	}
}

func TestValidateFileParts_OnlyLastMessageChecked(t *testing.T) {
	messages := []map[string]interface{}{
		{"role": "user", "parts": []interface{}{filePart(MaxFileSize * 2)}},
		{"role": "user", "parts": []interface{}{map[string]interface{}{"type": "text", "text": "no files here"}}},
	}
	if v := ValidateFileParts(messages); !v.Valid {
		t.Errorf("earlier message's files were checked: %+v", v)
	}
}

func TestValidateFileParts_NonDataURLSkipped(t *testing.T) {
	part := map[string]interface{}{"type": "file", "url": "https://example.com/huge.png"}
	if v := ValidateFileParts(lastMessageWith(part)); !v.Valid {
		t.Errorf("remote file url rejected: %+v", v)
	}
}

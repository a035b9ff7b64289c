package internal

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestPart_MarshalRoundTrip(t *testing.T) {
	part := Part{
		Type: "tool-call",
		Attrs: map[string]interface{}{
			"toolName": "display_diagram",
			"state":    "done",
		},
	}

	data, err := json.Marshal(part)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"type":"tool-call"`) {
		t.Errorf("Marshal() = %s, missing flattened type tag", data)
	}

	var got Part
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(got, part) {
		t.Errorf("round trip = %+v, want %+v", got, part)
	}
}

func TestPart_UnknownFieldsSurvive(t *testing.T) {
	raw := `{"type":"custom-widget","payload":{"nested":"value"},"flag":true}`
	var part Part
	if err := json.Unmarshal([]byte(raw), &part); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if part.Type != "custom-widget" {
		t.Errorf("Type = %q, want custom-widget", part.Type)
	}
	if _, ok := part.Attrs["payload"]; !ok {
		t.Error("nested payload field lost")
	}

	data, err := json.Marshal(part)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var again Part
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatalf("second Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(again, part) {
		t.Errorf("unknown part changed across round trip: %+v vs %+v", again, part)
	}
}

func TestPart_Text(t *testing.T) {
	part := Part{Type: "text", Attrs: map[string]interface{}{"text": "hello"}}
	if got := part.Text(); got != "hello" {
		t.Errorf("Text() = %q, want hello", got)
	}
	empty := Part{Type: "text"}
	if got := empty.Text(); got != "" {
		t.Errorf("Text() on attr-less part = %q, want empty", got)
	}
}

func TestXMLSnapshot_TupleEncoding(t *testing.T) {
	snap := XMLSnapshot{Index: 3, XML: `<mxCell id="2"/>`}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "[3,") || !strings.HasSuffix(string(data), "]") {
		t.Errorf("Marshal() = %s, want a [index, xml] pair", data)
	}

	var got XMLSnapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != snap {
		t.Errorf("round trip = %+v, want %+v", got, snap)
	}
}

func TestXMLSnapshot_RejectsBadShape(t *testing.T) {
	cases := []string{`{"index":1}`, `[1]`, `["a","b"]`, `[1,2]`}
	for _, raw := range cases {
		var snap XMLSnapshot
		if err := json.Unmarshal([]byte(raw), &snap); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", raw)
		}
	}
}

func TestChatSession_Metadata(t *testing.T) {
	session := CreateTestSession("meta", 9000)
	session.Thumbnail = "data:image/png;base64,AA"

	meta := session.Metadata()
	if meta.ID != "meta" || meta.Title != session.Title {
		t.Errorf("Metadata() identity fields = %+v", meta)
	}
	if meta.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", meta.MessageCount)
	}
	if !meta.HasDiagram {
		t.Error("HasDiagram = false, want true")
	}
	if meta.Thumbnail != session.Thumbnail {
		t.Error("Thumbnail not carried into metadata")
	}
	if meta.UpdatedAt != 9000 {
		t.Errorf("UpdatedAt = %d, want 9000", meta.UpdatedAt)
	}
}

func TestChatSession_JSONFieldNames(t *testing.T) {
	// The persisted shape must match what the browser client wrote.
	session := CreateTestSession("wire", 1000)
	data, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, field := range []string{`"id"`, `"title"`, `"createdAt"`, `"updatedAt"`, `"messages"`, `"xmlSnapshots"`, `"diagramXml"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("serialized session missing field %s", field)
		}
	}
	if strings.Contains(string(data), `"thumbnailDataUrl"`) {
		t.Error("empty thumbnail should be omitted")
	}
}

package internal

import "fmt"

// CreateTestSession creates a session with one user/assistant exchange and a
// small diagram. updatedAt is caller-controlled to exercise recency ordering.
func CreateTestSession(id string, updatedAt int64) *ChatSession {
	return &ChatSession{
		ID:        id,
		Title:     "Draw a flowchart",
		CreatedAt: updatedAt - 1000,
		UpdatedAt: updatedAt,
		Messages: []StoredMessage{
			{
				ID:   "m1",
				Role: RoleUser,
				Parts: []Part{
					{Type: "text", Attrs: map[string]interface{}{"text": "Draw a flowchart"}},
				},
			},
			{
				ID:   "m2",
				Role: RoleAssistant,
				Parts: []Part{
					{Type: "text", Attrs: map[string]interface{}{"text": "Here is your flowchart."}},
				},
			},
		},
		XMLSnapshots: []XMLSnapshot{
			{Index: 1, XML: `<mxCell id="2" value="Start"/>`},
		},
		DiagramXML: `<mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="0"/><mxCell id="2" value="Start" parent="1"/></root></mxGraphModel>`,
	}
}

// CreateTestSessions creates n sessions with strictly increasing updatedAt,
// ids session-000 (oldest) through session-(n-1) (newest).
func CreateTestSessions(n int) []*ChatSession {
	sessions := make([]*ChatSession, 0, n)
	for i := 0; i < n; i++ {
		sessions = append(sessions, CreateTestSession(fmt.Sprintf("session-%03d", i), int64(1000*(i+1))))
	}
	return sessions
}

// CreateTestRawMessage creates a raw (unsanitized) message object of the
// shape the streaming layer produces.
func CreateTestRawMessage(id, role, text string) map[string]interface{} {
	return map[string]interface{}{
		"id":   id,
		"role": role,
		"parts": []interface{}{
			map[string]interface{}{"type": "text", "text": text},
		},
	}
}

package internal

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// DefaultTitle is the title of a session before one is derived from its
// first user message.
const DefaultTitle = "New Chat"

// MaxTitleLength is the cap applied when deriving a title.
const MaxTitleLength = 100

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// NewEmptySession creates a fresh draft session with a unique id and no
// messages. Drafts are not persisted until they hold at least one message.
func NewEmptySession() *ChatSession {
	now := nowMillis()
	return &ChatSession{
		ID:           uuid.NewString(),
		Title:        DefaultTitle,
		CreatedAt:    now,
		UpdatedAt:    now,
		Messages:     []StoredMessage{},
		XMLSnapshots: []XMLSnapshot{},
		DiagramXML:   "",
	}
}

// ExtractTitle derives a session title from the first user message's first
// text part, trimmed and capped at MaxTitleLength. Returns DefaultTitle when
// no usable text exists.
func ExtractTitle(messages []StoredMessage) string {
	for _, msg := range messages {
		if msg.Role != RoleUser {
			continue
		}
		for _, part := range msg.Parts {
			if part.Type != "text" {
				continue
			}
			text := strings.TrimSpace(part.Text())
			if text == "" {
				return DefaultTitle
			}
			if runes := []rune(text); len(runes) > MaxTitleLength {
				return strings.TrimSpace(string(runes[:MaxTitleLength])) + "..."
			}
			return text
		}
		return DefaultTitle
	}
	return DefaultTitle
}

// Transient streaming-state fields that must never be persisted.
var streamingFields = []string{"isStreaming", "streamingState"}

// SanitizeMessage validates a raw message object and converts it to a
// StoredMessage, stripping streaming-state fields from every part. Returns
// nil for input with a missing id or a role outside the allowed set.
func SanitizeMessage(raw interface{}) *StoredMessage {
	msg, ok := raw.(map[string]interface{})
	if !ok || msg == nil {
		return nil
	}

	id, _ := msg["id"].(string)
	if id == "" {
		return nil
	}
	role, _ := msg["role"].(string)
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
	default:
		return nil
	}

	parts := []Part{}
	if rawParts, ok := msg["parts"].([]interface{}); ok {
		parts = make([]Part, 0, len(rawParts))
		for _, rp := range rawParts {
			pm, ok := rp.(map[string]interface{})
			if !ok || pm == nil {
				parts = append(parts, Part{Type: "unknown"})
				continue
			}
			typ, _ := pm["type"].(string)
			attrs := make(map[string]interface{}, len(pm))
			for k, v := range pm {
				if k == "type" {
					continue
				}
				attrs[k] = v
			}
			for _, f := range streamingFields {
				delete(attrs, f)
			}
			if len(attrs) == 0 {
				attrs = nil
			}
			parts = append(parts, Part{Type: typ, Attrs: attrs})
		}
	}

	return &StoredMessage{ID: id, Role: role, Parts: parts}
}

// SanitizeMessages sanitizes a raw message log, dropping entries that fail
// validation.
func SanitizeMessages(raw []interface{}) []StoredMessage {
	out := make([]StoredMessage, 0, len(raw))
	for _, r := range raw {
		if msg := SanitizeMessage(r); msg != nil {
			out = append(out, *msg)
		}
	}
	return out
}

// IsMinimalDiagram reports whether the diagram XML contains no user-visible
// shapes. Cell id "2" is the first id the editor assigns to real content;
// ids "0" and "1" are the root and default layer.
func IsMinimalDiagram(xml string) bool {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, xml)
	return !strings.Contains(stripped, `id="2"`)
}

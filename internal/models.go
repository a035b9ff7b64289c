package internal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message roles accepted in stored conversations.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatSession is the unit of persistence: one conversation plus the diagram
// state it produced.
type ChatSession struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	CreatedAt    int64            `json:"createdAt"`
	UpdatedAt    int64            `json:"updatedAt"`
	Messages     []StoredMessage  `json:"messages"`
	XMLSnapshots []XMLSnapshot    `json:"xmlSnapshots"`
	DiagramXML   string           `json:"diagramXml"`
	Thumbnail    string           `json:"thumbnailDataUrl,omitempty"`
	History      []DiagramVersion `json:"diagramHistory,omitempty"`
}

// StoredMessage is a sanitized conversation entry.
type StoredMessage struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// DiagramVersion is one entry of a session's diagram edit history.
type DiagramVersion struct {
	SVG string `json:"svg"`
	XML string `json:"xml"`
}

// Part is one typed payload fragment of a stored message. The type tag is
// pulled out; every other field rides in Attrs untouched, so part shapes this
// code does not know about survive a store/load round-trip.
type Part struct {
	Type  string
	Attrs map[string]interface{}
}

// MarshalJSON flattens Attrs and the type tag back into a single object.
func (p Part) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(p.Attrs)+1)
	for k, v := range p.Attrs {
		m[k] = v
	}
	m["type"] = p.Type
	return json.Marshal(m)
}

// UnmarshalJSON splits the type tag from the remaining fields.
func (p *Part) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	typ, _ := m["type"].(string)
	delete(m, "type")
	p.Type = typ
	if len(m) == 0 {
		p.Attrs = nil
	} else {
		p.Attrs = m
	}
	return nil
}

// Text returns the part's "text" field, or "" if absent.
func (p Part) Text() string {
	s, _ := p.Attrs["text"].(string)
	return s
}

// XMLSnapshot maps a message position to the diagram XML captured there.
// Encoded on the wire as a two-element [index, xml] tuple, the format the
// browser client has always written.
type XMLSnapshot struct {
	Index int
	XML   string
}

// MarshalJSON encodes the snapshot as an [index, xml] pair.
func (s XMLSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{s.Index, s.XML})
}

// UnmarshalJSON decodes an [index, xml] pair.
func (s *XMLSnapshot) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("snapshot is not a two-element pair: %w", err)
	}
	var idx float64
	if err := json.Unmarshal(raw[0], &idx); err != nil {
		return fmt.Errorf("snapshot index: %w", err)
	}
	var xml string
	if err := json.Unmarshal(raw[1], &xml); err != nil {
		return fmt.Errorf("snapshot xml: %w", err)
	}
	s.Index = int(idx)
	s.XML = xml
	return nil
}

// SessionMetadata is the listing projection of a ChatSession. It is stored
// denormalized so listings never load message bodies.
type SessionMetadata struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
	MessageCount int    `json:"messageCount"`
	HasDiagram   bool   `json:"hasDiagram"`
	Thumbnail    string `json:"thumbnailDataUrl,omitempty"`
}

// HasDiagram reports whether the session carries a non-blank diagram.
func (s *ChatSession) HasDiagram() bool {
	return strings.TrimSpace(s.DiagramXML) != ""
}

// Metadata computes the listing projection of the session.
func (s *ChatSession) Metadata() SessionMetadata {
	return SessionMetadata{
		ID:           s.ID,
		Title:        s.Title,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		MessageCount: len(s.Messages),
		HasDiagram:   s.HasDiagram(),
		Thumbnail:    s.Thumbnail,
	}
}

package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Exporter writes a stored session to an output stream in one format.
type Exporter interface {
	Export(session *ChatSession, w io.Writer) error
	Extension() string
}

// NewExporter creates an exporter for the given format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, md)", format)
	}
}

// JSONExporter exports sessions as indented JSON, in the exact shape the
// store persists.
type JSONExporter struct{}

// Export exports a session to JSON format
func (e *JSONExporter) Export(session *ChatSession, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(session)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}

// yamlSession is the export shape for YAML: snapshots keep their index/xml
// field names instead of the compact JSON tuple.
type yamlSession struct {
	ID        string        `yaml:"id"`
	Title     string        `yaml:"title"`
	CreatedAt string        `yaml:"created_at"`
	UpdatedAt string        `yaml:"updated_at"`
	Messages  []yamlMessage `yaml:"messages"`
	Snapshots []yamlSnap    `yaml:"xml_snapshots,omitempty"`
	Diagram   string        `yaml:"diagram_xml,omitempty"`
}

type yamlMessage struct {
	ID    string                   `yaml:"id"`
	Role  string                   `yaml:"role"`
	Parts []map[string]interface{} `yaml:"parts"`
}

type yamlSnap struct {
	Index int    `yaml:"index"`
	XML   string `yaml:"xml"`
}

// YAMLExporter exports sessions in YAML format
type YAMLExporter struct{}

// Export exports a session to YAML format
func (e *YAMLExporter) Export(session *ChatSession, w io.Writer) error {
	out := yamlSession{
		ID:        session.ID,
		Title:     session.Title,
		CreatedAt: formatMillis(session.CreatedAt),
		UpdatedAt: formatMillis(session.UpdatedAt),
		Diagram:   session.DiagramXML,
	}
	for _, msg := range session.Messages {
		ym := yamlMessage{ID: msg.ID, Role: msg.Role}
		for _, part := range msg.Parts {
			pm := make(map[string]interface{}, len(part.Attrs)+1)
			for k, v := range part.Attrs {
				pm[k] = v
			}
			pm["type"] = part.Type
			ym.Parts = append(ym.Parts, pm)
		}
		out.Messages = append(out.Messages, ym)
	}
	for _, snap := range session.XMLSnapshots {
		out.Snapshots = append(out.Snapshots, yamlSnap{Index: snap.Index, XML: snap.XML})
	}

	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	return enc.Encode(out)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}

// MarkdownExporter exports sessions as a readable transcript.
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(session *ChatSession, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# %s\n\n", session.Title)
	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", session.ID)
	_, _ = fmt.Fprintf(w, "**Created:** %s  \n", formatMillis(session.CreatedAt))
	_, _ = fmt.Fprintf(w, "**Updated:** %s  \n", formatMillis(session.UpdatedAt))
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))
	if session.HasDiagram() {
		_, _ = fmt.Fprintf(w, "**Diagram:** yes\n\n")
	}
	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range session.Messages {
		_, _ = fmt.Fprintf(w, "**%s:**\n\n", msg.Role)
		for _, part := range msg.Parts {
			switch part.Type {
			case "text":
				_, _ = fmt.Fprintf(w, "%s\n\n", part.Text())
			case "file":
				name, _ := part.Attrs["filename"].(string)
				if name == "" {
					name = "attachment"
				}
				_, _ = fmt.Fprintf(w, "_[file: %s]_\n\n", name)
			default:
				_, _ = fmt.Fprintf(w, "_[%s]_\n\n", part.Type)
			}
		}
		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

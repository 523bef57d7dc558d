package bill

import (
	"encoding/json"
	"fmt"
)

// NotesKind discriminates the three legacy shapes free-text notes can
// take.
type NotesKind int

// Notes variants.
const (
	NotesEmpty      NotesKind = iota
	NotesText                 // a single plain text
	NotesEntries              // a list of typed entries
	NotesStructured           // separate texts and coded contents
)

// NoteEntry is one typed note: free text optionally tagged with a code.
type NoteEntry struct {
	Code string `json:"code,omitempty"`
	Text string `json:"text"`
}

// Notes is the document's free-text block. Historical clients sent it
// as a bare string, an array of entries, or an object with separate
// texts and contents; the three shapes are kept as explicit variants of
// one type instead of an untyped union.
type Notes struct {
	Kind     NotesKind
	Text     string
	Entries  []NoteEntry
	Texts    []string
	Contents []NoteEntry
}

// TextNotes builds a plain-text note.
func TextNotes(text string) *Notes {
	return &Notes{Kind: NotesText, Text: text}
}

// EntryNotes builds a note list.
func EntryNotes(entries ...NoteEntry) *Notes {
	return &Notes{Kind: NotesEntries, Entries: entries}
}

// StructuredNotes builds the texts-plus-contents variant.
func StructuredNotes(texts []string, contents []NoteEntry) *Notes {
	return &Notes{Kind: NotesStructured, Texts: texts, Contents: contents}
}

// IsEmpty reports whether the notes carry no content at all.
func (n *Notes) IsEmpty() bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case NotesText:
		return n.Text == ""
	case NotesEntries:
		return len(n.Entries) == 0
	case NotesStructured:
		return len(n.Texts) == 0 && len(n.Contents) == 0
	default:
		return true
	}
}

// AllTexts flattens the variant into plain strings for serialization.
func (n *Notes) AllTexts() []string {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case NotesText:
		if n.Text == "" {
			return nil
		}
		return []string{n.Text}
	case NotesEntries:
		out := make([]string, 0, len(n.Entries))
		for _, e := range n.Entries {
			if e.Code == "" {
				out = append(out, e.Text)
			}
		}
		return out
	case NotesStructured:
		return n.Texts
	default:
		return nil
	}
}

// CodedContents returns the entries carrying a code.
func (n *Notes) CodedContents() []NoteEntry {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case NotesEntries:
		var out []NoteEntry
		for _, e := range n.Entries {
			if e.Code != "" {
				out = append(out, e)
			}
		}
		return out
	case NotesStructured:
		return n.Contents
	default:
		return nil
	}
}

type structuredNotes struct {
	Texts    []string    `json:"texts"`
	Contents []NoteEntry `json:"contents"`
}

// UnmarshalJSON accepts the three legacy shapes: a JSON string, an
// array of entries (or bare strings), or an object with "texts" and
// "contents".
func (n *Notes) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*n = Notes{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Notes{Kind: NotesText, Text: s}
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		entries := make([]NoteEntry, 0, len(raw))
		for _, r := range raw {
			if len(r) > 0 && r[0] == '"' {
				var s string
				if err := json.Unmarshal(r, &s); err != nil {
					return err
				}
				entries = append(entries, NoteEntry{Text: s})
				continue
			}
			var e NoteEntry
			if err := json.Unmarshal(r, &e); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		*n = Notes{Kind: NotesEntries, Entries: entries}
		return nil
	case '{':
		var s structuredNotes
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Notes{Kind: NotesStructured, Texts: s.Texts, Contents: s.Contents}
		return nil
	default:
		return fmt.Errorf("bill: notes must be a string, array or object")
	}
}

// MarshalJSON always emits the structured shape.
func (n *Notes) MarshalJSON() ([]byte, error) {
	if n.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(structuredNotes{
		Texts:    n.AllTexts(),
		Contents: n.CodedContents(),
	})
}

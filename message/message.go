// Package message defines the destination-agnostic outbound message.
package message

// Message is composed fresh for every post. Treat it as immutable once built:
// helpers that change it return copies.
type Message struct {
	// Content is plain text shown above the embeds.
	Content string `json:"content,omitempty"`

	// ThreadName, when set, asks the destination to open a new thread named after it.
	ThreadName string `json:"thread_name,omitempty"`

	// Embeds are the visual blocks, in display order.
	Embeds []Embed `json:"embeds,omitempty"`

	// Links are the action links, in display order.
	Links []Link `json:"links,omitempty"`
}

// Embed is one visual block.
type Embed struct {
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
	Footer      string `json:"footer,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Link is a labelled URL rendered as an action button.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// WithLink returns a copy of m with l appended to its links.
func (m *Message) WithLink(l Link) *Message {
	out := m.clone()
	out.Links = append(out.Links, l)
	return out
}

// WithThreadName returns a copy of m that requests a thread named name.
func (m *Message) WithThreadName(name string) *Message {
	out := m.clone()
	out.ThreadName = name
	return out
}

func (m *Message) clone() *Message {
	out := &Message{Content: m.Content, ThreadName: m.ThreadName}
	if m.Embeds != nil {
		out.Embeds = append(make([]Embed, 0, len(m.Embeds)), m.Embeds...)
	}
	if m.Links != nil {
		out.Links = append(make([]Link, 0, len(m.Links)+1), m.Links...)
	}
	return out
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

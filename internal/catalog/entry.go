// Package catalog loads the intent response catalog: the labeled patterns
// used for training and the response templates used to reply.
package catalog

// Media is a resource recommended after a reply.
type Media struct {
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Entry is one intent in the catalog.
type Entry struct {
	Tag       string   `json:"tag" yaml:"tag"`
	Patterns  []string `json:"patterns" yaml:"patterns"`
	Responses []string `json:"responses" yaml:"responses"`
	Keywords  []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Videos    []Media  `json:"videos,omitempty" yaml:"videos,omitempty"`

	// Video is the older single-media form; Load merges it into Videos.
	Video *Media `json:"video,omitempty" yaml:"video,omitempty"`
}

// HasMedia reports whether the entry recommends any media.
func (e *Entry) HasMedia() bool {
	return len(e.Videos) > 0
}

package catalog

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// DefaultMediaTitle names media whose catalog entry has no title.
const DefaultMediaTitle = "Guía para calmar la mente"

// FallbackText is the reply for an intent the catalog has no entry for.
const FallbackText = "Disculpa, no tengo una respuesta para eso."

// ClarifyText asks the user to rephrase when no intent cleared the floor.
const ClarifyText = "Lo siento, no entendí eso. ¿Puedes decirlo de otra manera?"

// Reply is a filled response for one intent.
type Reply struct {
	Tag   string `json:"tag"`
	Text  string `json:"text"`
	Media *Media `json:"media,omitempty"`
}

// HasMedia reports whether the reply recommends media, which starts the
// post-media follow-up in a conversation.
func (r Reply) HasMedia() bool {
	return r.Media != nil
}

// Fill replaces the name placeholders in a response template.
func Fill(template, name string) string {
	return strings.NewReplacer("{name}", name, "{nombre}", name).Replace(template)
}

// Respond picks a response template for tag at random, fills in name and,
// if the intent has media, picks one item.
func (c *Catalog) Respond(tag, name string, rng *rand.Rand) (Reply, error) {
	e, ok := c.Lookup(tag)
	if !ok {
		return Reply{}, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	responses := nonBlank(e.Responses)
	if len(responses) == 0 {
		return Reply{}, fmt.Errorf("intent %q has no responses", tag)
	}

	r := Reply{
		Tag:  tag,
		Text: Fill(responses[rng.IntN(len(responses))], name),
	}
	if e.HasMedia() {
		m := e.Videos[rng.IntN(len(e.Videos))]
		if strings.TrimSpace(m.Title) == "" {
			m.Title = DefaultMediaTitle
		}
		r.Media = &m
	}
	return r, nil
}

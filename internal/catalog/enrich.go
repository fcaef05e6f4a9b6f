package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/happyhackingspace/intent/internal/htmlutil"
)

// Enricher fills in missing media titles from the linked pages.
type Enricher struct {
	Client    *http.Client
	UserAgent string
}

// NewEnricher returns an Enricher with a bounded HTTP timeout.
func NewEnricher(timeout time.Duration) *Enricher {
	return &Enricher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: "intent-catalog/1.0",
	}
}

// Enrich fetches every untitled media link and stores the page title.
// Links that fail are logged and left untitled. It returns the number of
// titles filled.
func (en *Enricher) Enrich(ctx context.Context, c *Catalog) (int, error) {
	filled := 0
	for i := range c.Entries {
		e := &c.Entries[i]
		for j := range e.Videos {
			m := &e.Videos[j]
			if strings.TrimSpace(m.Title) != "" || m.URL == "" {
				continue
			}
			if err := ctx.Err(); err != nil {
				return filled, err
			}
			title, err := en.Title(ctx, m.URL)
			if err != nil {
				slog.Warn("Cannot fetch media title", "tag", e.Tag, "url", m.URL, "error", err)
				continue
			}
			if title == "" {
				slog.Debug("Media page has no title", "tag", e.Tag, "url", m.URL)
				continue
			}
			m.Title = title
			filled++
			slog.Debug("Media title filled", "tag", e.Tag, "title", title)
		}
	}
	return filled, nil
}

// Title fetches rawURL and returns its page title.
func (en *Enricher) Title(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	if en.UserAgent != "" {
		req.Header.Set("User-Agent", en.UserAgent)
	}
	client := en.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	doc, err := htmlutil.LoadHTML(resp.Body)
	if err != nil {
		return "", err
	}
	return htmlutil.PageTitle(doc), nil
}

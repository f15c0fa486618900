// Package sitemap maps PLMXML site identifiers to external-system base URLs.
//
// The mapping is loaded from a YAML file of the form:
//
//	sites:
//	  - site_id: "1234567890"
//	    base_url: https://plm.example.com/tc
package sitemap

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry maps one site identifier to an external-system base URL.
type Entry struct {
	SiteID  string `yaml:"site_id"`
	BaseURL string `yaml:"base_url"`
}

type file struct {
	Sites []Entry `yaml:"sites"`
}

// Provider answers site-to-URL lookups. It is immutable after construction
// and safe for concurrent use.
type Provider struct {
	urls map[string]string
}

// New builds a provider from explicit entries. Later entries for the same
// site identifier win.
func New(entries []Entry) *Provider {
	urls := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.SiteID == "" {
			continue
		}
		urls[entry.SiteID] = entry.BaseURL
	}
	return &Provider{urls: urls}
}

// Load reads a provider from a YAML file.
func Load(path string) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open site map %s: %w", path, err)
	}
	defer f.Close()

	var cfg file
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode site map %s: %w", path, err)
	}
	return New(cfg.Sites), nil
}

// Lookup returns the external-system base URL for a site identifier.
func (p *Provider) Lookup(siteID string) (string, bool) {
	if p == nil {
		return "", false
	}
	base, ok := p.urls[siteID]
	return base, ok
}

// ExternalURL builds a deep link for an object uid under the site's base URL.
func (p *Provider) ExternalURL(siteID, uid string) (string, bool) {
	base, ok := p.Lookup(siteID)
	if !ok || base == "" || uid == "" {
		return "", false
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(uid), true
}

// Package authority assigns URLs a source-authority tier from a local
// domain table. No network access is involved.
package authority

import (
	"net/url"
	"strings"

	"github.com/ppiankov/infofact/internal/model"
)

// Classifier maps hosts to authority tiers
type Classifier struct {
	domainMap map[string]model.AuthorityTier
	primary   []string
	secondary []string
}

// NewClassifier builds a classifier from cfg
func NewClassifier(cfg model.AuthorityConfig) *Classifier {
	c := &Classifier{
		domainMap: make(map[string]model.AuthorityTier, len(cfg.DomainMap)),
		primary:   normalizeDomains(cfg.PrimaryDomains),
		secondary: normalizeDomains(cfg.SecondaryDomains),
	}
	for host, tier := range cfg.DomainMap {
		c.domainMap[strings.ToLower(host)] = ParseTier(tier)
	}
	return c
}

// Classify returns the tier for rawURL. Unparsable or host-less input is
// TierUnknown; any other unlisted host is TierTertiary.
func (c *Classifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return model.TierUnknown
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	// Explicit mappings win over suffix rules
	if tier, ok := c.domainMap[host]; ok {
		return tier
	}
	if tier, ok := c.domainMap["www."+host]; ok {
		return tier
	}

	if matchesAny(host, c.primary) {
		return model.TierPrimary
	}
	if matchesAny(host, c.secondary) {
		return model.TierSecondary
	}

	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") ||
		strings.HasSuffix(host, ".mil") || strings.HasSuffix(host, ".ac.uk") {
		return model.TierPrimary
	}

	return model.TierTertiary
}

// Entities builds URL and person entities, classifying the URLs
func (c *Classifier) Entities(urls, persons []string) []model.Entity {
	entities := make([]model.Entity, 0, len(urls)+len(persons))
	for _, u := range urls {
		entities = append(entities, model.Entity{Kind: model.EntityURL, Value: u, Authority: c.Classify(u)})
	}
	for _, p := range persons {
		entities = append(entities, model.Entity{Kind: model.EntityPerson, Value: p})
	}
	return entities
}

// matchesAny reports whether host equals a domain or is a subdomain of one
func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), ".")
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// ParseTier converts "primary"/"1" etc. to a tier; anything else is tertiary
func ParseTier(tier string) model.AuthorityTier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}

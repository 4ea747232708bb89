package model

// Evidence is one review returned by the fact-check search service
type Evidence struct {
	Claim      string `json:"claim"`                 // Claim text the review was found for (our query)
	ClaimText  string `json:"claim_text,omitempty"`  // Claim as phrased by the reviewer
	Claimant   string `json:"claimant,omitempty"`    // Who made the claim, if known
	Publisher  string `json:"publisher,omitempty"`   // Fact-checking organization
	Title      string `json:"title,omitempty"`       // Review headline
	URL        string `json:"url,omitempty"`         // Review URL
	Rating     string `json:"rating,omitempty"`      // Textual rating, not normalized
	ReviewDate string `json:"review_date,omitempty"` // As returned by the service
}

// IsEmpty reports whether the record carries no usable information
func (e Evidence) IsEmpty() bool {
	return e.Publisher == "" && e.Title == "" && e.URL == "" && e.Rating == ""
}

// EntityKind classifies an entity mentioned in an article
type EntityKind string

const (
	EntityURL    EntityKind = "url"
	EntityPerson EntityKind = "person"
)

// Entity is a URL or person name extracted locally from the article text
type Entity struct {
	Kind      EntityKind    `json:"kind"`
	Value     string        `json:"value"`
	Authority AuthorityTier `json:"authority,omitempty"` // Only classified for URLs
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Government, academic, official bodies
	TierSecondary AuthorityTier = 2 // Wire services, major publishers, reference works
	TierTertiary  AuthorityTier = 3 // Everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// Credibility is the model's assessment of a single entity
type Credibility struct {
	Entity          string     `json:"entity"`
	Kind            EntityKind `json:"kind,omitempty"`
	Reliability     string     `json:"reliability"`
	Bias            string     `json:"bias"`
	Trustworthiness string     `json:"trustworthiness"`
}

// Sentiment is the four-field tone report
type Sentiment struct {
	OverallTone   string `json:"overall_tone"`
	BiasScore     int    `json:"bias_score"` // 0-100, -1 when the model gave none
	KeyHighlights string `json:"key_highlights"`
	Impact        string `json:"impact"`
}

package model

// Phase is a suggestion's position in the scripted progression, plus the
// Checkpoint side channel for meta-questions.
type Phase string

const (
	PhaseRapport    Phase = "Rapport"
	PhaseEscalation Phase = "Escalation"
	PhasePivot      Phase = "Pivot"
	PhaseCloser     Phase = "Closer"
	PhaseCheckpoint Phase = "Checkpoint"
)

// ValidPhase reports whether p is one of the known phases.
func ValidPhase(p Phase) bool {
	switch p {
	case PhaseRapport, PhaseEscalation, PhasePivot, PhaseCloser, PhaseCheckpoint:
		return true
	}
	return false
}

// Suggestion is one candidate reply. Produced in a batch by a single
// generation call; never mutated afterwards except the rating.
type Suggestion struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Vibe     string `json:"vibe"`
	Strategy string `json:"strategy"`
	Phase    Phase  `json:"phase"`
	IsMeta   bool   `json:"isMeta,omitempty"`
	Rating   int    `json:"rating,omitempty"`
}

// SocialReview is the qualitative read of a thread, one per
// check-momentum action.
type SocialReview struct {
	SyncScore          int      `json:"syncScore"`
	Mood               string   `json:"mood"`
	Highlights         []string `json:"highlights"`
	StrategicAdvice    string   `json:"strategicAdvice"`
	RelationshipStatus string   `json:"relationshipStatus"`
}

// Conversation is one generation request and everything it produced. The
// settings and context snapshots are frozen at creation time; only the
// review may be attached later. IDs stay stable across local and remote
// stores.
type Conversation struct {
	ID          string         `json:"id"`
	Timestamp   int64          `json:"timestamp"`
	Settings    UserSettings   `json:"settings"`
	Context     MessageContext `json:"context"`
	Suggestions []Suggestion   `json:"suggestions"`
	Summary     string         `json:"summary,omitempty"`
	Review      *SocialReview  `json:"review,omitempty"`
}

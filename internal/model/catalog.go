package model

// VibeOption pairs a vibe label with its display icon.
type VibeOption struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// GoalTemplate is a canned goal the onboarding flow offers.
type GoalTemplate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AgentOption is a selectable agent persona.
type AgentOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// VibeOptions is the vibe catalog offered by the vibe picker.
var VibeOptions = []VibeOption{
	{Name: "Romantic", Icon: "❤️"},
	{Name: "Flirty", Icon: "🫦"},
	{Name: "Chill", Icon: "☕"},
	{Name: "Savage", Icon: "😈"},
	{Name: "Professional", Icon: "💼"},
	{Name: "Sarcastic", Icon: "🙄"},
	{Name: "Empathetic", Icon: "🫂"},
	{Name: "Direct", Icon: "🎯"},
	{Name: "Playful", Icon: "🎡"},
	{Name: "Mysterious", Icon: "🎭"},
	{Name: "Supportive", Icon: "🤝"},
	{Name: "Witty", Icon: "💡"},
	{Name: "Formal", Icon: "🤵"},
	{Name: "Lowkey", Icon: "🤫"},
	{Name: "Hype", Icon: "⚡"},
	{Name: "Nonchalant", Icon: "🧊"},
	{Name: "Unbothered", Icon: "🧘"},
	{Name: "Chaotic", Icon: "🌪️"},
	{Name: "Risky", Icon: "🎲"},
	{Name: "Wholesome", Icon: "🌸"},
	{Name: "Dramatic", Icon: "🎭"},
	{Name: "Deep", Icon: "🌊"},
	{Name: "Seductive", Icon: "🔥"},
	{Name: "Passive-Aggressive", Icon: "🙃"},
	{Name: "Curious", Icon: "🧐"},
	{Name: "Humble", Icon: "🙏"},
	{Name: "Bossy", Icon: "👑"},
}

// GoalTemplates is the canned goal catalog.
var GoalTemplates = []GoalTemplate{
	{Name: "Break the ice", Description: "Start a fresh conversation with good energy"},
	{Name: "Get a date", Description: "Move the conversation towards meeting in person"},
	{Name: "Resolve conflict", Description: "Address a misunderstanding calmly"},
	{Name: "Make them laugh", Description: "Keep things light and entertaining"},
	{Name: "Stay friendly", Description: "Keep a healthy distance while being polite"},
	{Name: "Deep dive", Description: "Get to know them on a more personal level"},
}

// AgentOptions is the agent persona catalog.
var AgentOptions = []AgentOption{
	{ID: "ghost", Name: "The Ghost", Description: "Smooth, mysterious, and always leaves them wanting more.", Icon: "👻"},
	{ID: "scholar", Name: "The Scholar", Description: "Intellectual, witty, and master of deep conversations.", Icon: "📚"},
	{ID: "hype", Name: "The Hype Man", Description: "Maximum energy, charismatic, and bold moves only.", Icon: "🔥"},
	{ID: "shadow", Name: "The Shadow", Description: "Silent but deadly precision in reading social cues.", Icon: "🌑"},
}

// Genders lists the selectable gender labels.
var Genders = []Gender{GenderMale, GenderFemale, GenderNonBinary, GenderNotSpecified}

// Relationships lists the selectable relationship categories.
var Relationships = []Relationship{
	RelationshipFriend, RelationshipCrush, RelationshipPartner,
	RelationshipBoss, RelationshipColleague, RelationshipParent,
	RelationshipSibling, RelationshipAcquaintance, RelationshipStranger,
}

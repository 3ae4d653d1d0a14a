// Package model defines data structures for the Reply platform.
package model

// Gender is a persona gender label.
type Gender string

const (
	GenderMale         Gender = "Male"
	GenderFemale       Gender = "Female"
	GenderNonBinary    Gender = "Non-binary"
	GenderNotSpecified Gender = "Not Specified"
)

// Relationship categorizes who the user is talking to.
type Relationship string

const (
	RelationshipFriend       Relationship = "Friend"
	RelationshipCrush        Relationship = "Crush"
	RelationshipPartner      Relationship = "Partner"
	RelationshipBoss         Relationship = "Boss"
	RelationshipColleague    Relationship = "Colleague"
	RelationshipParent       Relationship = "Parent"
	RelationshipSibling      Relationship = "Sibling"
	RelationshipAcquaintance Relationship = "Acquaintance"
	RelationshipStranger     Relationship = "Stranger"
)

// UserSettings is the flat persona configuration record. Last write wins;
// no history is kept.
type UserSettings struct {
	UserName       string       `json:"userName"`
	AgentName      string       `json:"agentName"`
	UserGender     Gender       `json:"userGender"`
	TargetGender   Gender       `json:"targetGender"`
	Relationship   Relationship `json:"relationship"`
	CurrentVibe    string       `json:"currentVibe"`
	Situation      string       `json:"situation"`
	Goal           string       `json:"goal"`
	Confidence     int          `json:"confidence"`
	Humor          int          `json:"humor"`
	Humanity       int          `json:"humanity"`
	IsProfileSetup bool         `json:"isProfileSetup"`
}

// DefaultSettings returns the initial persona configuration.
func DefaultSettings() UserSettings {
	return UserSettings{
		UserName:       "",
		AgentName:      "The Ghost",
		UserGender:     GenderNotSpecified,
		TargetGender:   GenderNotSpecified,
		Relationship:   RelationshipAcquaintance,
		CurrentVibe:    "Chill",
		Situation:      "",
		Goal:           "Keep the conversation flowing naturally",
		Confidence:     70,
		Humor:          50,
		Humanity:       90,
		IsProfileSetup: false,
	}
}

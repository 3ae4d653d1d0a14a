package engine

// Schema is the JSON-schema subset the generative API accepts for
// structured responses: object/array/string/number/boolean plus enums.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

const (
	TypeObject  = "OBJECT"
	TypeArray   = "ARRAY"
	TypeString  = "STRING"
	TypeNumber  = "NUMBER"
	TypeBoolean = "BOOLEAN"
)

// suggestionSchema is the strict response shape for a batch of reply
// suggestions.
func suggestionSchema() *Schema {
	return &Schema{
		Type: TypeArray,
		Items: &Schema{
			Type: TypeObject,
			Properties: map[string]*Schema{
				"text":     {Type: TypeString, Description: "The actual text to send"},
				"vibe":     {Type: TypeString},
				"strategy": {Type: TypeString, Description: "Why we are saying this"},
				"phase": {
					Type: TypeString,
					Enum: []string{"Rapport", "Escalation", "Pivot", "Closer", "Checkpoint"},
				},
				"isMeta": {Type: TypeBoolean},
			},
			Required: []string{"text", "vibe", "strategy", "phase", "isMeta"},
		},
	}
}

// reviewSchema is the response shape for a social review.
func reviewSchema() *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"syncScore":          {Type: TypeNumber},
			"mood":               {Type: TypeString},
			"highlights":         {Type: TypeArray, Items: &Schema{Type: TypeString}},
			"strategicAdvice":    {Type: TypeString},
			"relationshipStatus": {Type: TypeString},
		},
		Required: []string{"syncScore", "mood", "highlights", "strategicAdvice", "relationshipStatus"},
	}
}

// refineSchema is the response shape for situation refinement.
func refineSchema() *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"situation": {Type: TypeString},
			"goal":      {Type: TypeString},
		},
		Required: []string{"situation", "goal"},
	}
}

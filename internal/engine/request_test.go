package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replyhq/reply/internal/model"
)

func testSettings() model.UserSettings {
	s := model.DefaultSettings()
	s.Situation = "Matched on an app yesterday"
	s.Goal = "Lock in a first date"
	s.Relationship = model.RelationshipCrush
	s.CurrentVibe = "Flirty & Fun"
	s.Humanity = 85
	return s
}

func TestSerializeThread(t *testing.T) {
	thread := []model.ChatMessage{
		{Sender: model.SenderThem, Text: "hey stranger"},
		{Sender: model.SenderMe, Text: "hey yourself"},
	}

	assert.Equal(t, "Them: hey stranger\nMe: hey yourself", SerializeThread(thread))
	assert.Empty(t, SerializeThread(nil))
}

func TestBuildReplyRequestIncludesPersonaContext(t *testing.T) {
	req := BuildReplyRequest(testSettings(), model.MessageContext{
		Thread: []model.ChatMessage{
			{Sender: model.SenderMe, Text: "how was your weekend"},
			{Sender: model.SenderThem, Text: "honestly kind of chaotic lol"},
		},
	})

	assert.Contains(t, req.System, "Matched on an app yesterday")
	assert.Contains(t, req.System, "Lock in a first date")
	assert.Contains(t, req.System, "Flirty & Fun")
	assert.Contains(t, req.System, "85%")

	assert.Contains(t, req.Prompt, "LAST MESSAGE FROM THEM: honestly kind of chaotic lol")
	assert.Contains(t, req.Prompt, "Me: how was your weekend")
	require.NotNil(t, req.Schema)
	assert.Equal(t, TypeArray, req.Schema.Type)
}

func TestBuildReplyRequestEmptyThread(t *testing.T) {
	req := BuildReplyRequest(testSettings(), model.MessageContext{})

	assert.Contains(t, req.Prompt, "LAST MESSAGE FROM THEM: n/a")
	assert.Contains(t, req.Prompt, "Start the convo.")
}

func TestBuildReplyRequestLastMessageFromMe(t *testing.T) {
	req := BuildReplyRequest(testSettings(), model.MessageContext{
		Thread: []model.ChatMessage{
			{Sender: model.SenderThem, Text: "sure"},
			{Sender: model.SenderMe, Text: "ok pick a place"},
		},
	})

	// The newest message is mine, so there is no pending message from them.
	assert.Contains(t, req.Prompt, "LAST MESSAGE FROM THEM: n/a")
	assert.Contains(t, req.Prompt, "Me: ok pick a place")
}

func TestBuildReviewRequest(t *testing.T) {
	req := BuildReviewRequest(testSettings(), model.MessageContext{
		Thread: []model.ChatMessage{{Sender: model.SenderThem, Text: "so what are you doing friday"}},
	})

	assert.Equal(t, "Analyze dialogue velocity and social distance. Output JSON.", req.System)
	assert.Contains(t, req.Prompt, "Them: so what are you doing friday")
	require.NotNil(t, req.Schema)
	assert.Equal(t, TypeObject, req.Schema.Type)
	assert.Contains(t, req.Schema.Required, "syncScore")
}

func TestBuildRefineRequest(t *testing.T) {
	req := BuildRefineRequest("we argued last night and I want to fix it")

	assert.Empty(t, req.System)
	assert.Contains(t, req.Prompt, "we argued last night and I want to fix it")
	require.NotNil(t, req.Schema)
	assert.ElementsMatch(t, []string{"situation", "goal"}, req.Schema.Required)
}

func TestSuggestionSchemaShape(t *testing.T) {
	schema := suggestionSchema()

	require.Equal(t, TypeArray, schema.Type)
	require.NotNil(t, schema.Items)
	for _, field := range []string{"text", "vibe", "strategy", "phase", "isMeta"} {
		assert.Contains(t, schema.Items.Properties, field, "missing property %s", field)
	}
	phases := schema.Items.Properties["phase"].Enum
	assert.True(t, len(phases) >= 4, "phase enum present")
	assert.Contains(t, phases, string(model.PhaseRapport))
}

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replyhq/reply/internal/model"
)

func testConversation(id string) model.Conversation {
	return model.Conversation{
		ID:        id,
		Timestamp: 1700000000000,
		Settings:  model.DefaultSettings(),
		Suggestions: []model.Suggestion{
			{ID: "suggestion-0-1", Text: "hey"},
		},
	}
}

func TestNewStateStartsAtLanding(t *testing.T) {
	st := NewState(nil)

	assert.Equal(t, ViewLanding, st.View())
	assert.Equal(t, model.ModeChat, st.Mode())
	assert.False(t, st.Settings().IsProfileSetup)
}

func TestFinalizeProfileMovesToApp(t *testing.T) {
	st := NewState(nil)

	settings := st.FinalizeProfile()

	assert.True(t, settings.IsProfileSetup)
	assert.Equal(t, ViewApp, st.View())
}

func TestApplyGenerationLatestWins(t *testing.T) {
	st := NewState(nil)

	gen := st.BeginGeneration()
	latest := st.ApplyGeneration(gen, testConversation("c1"))

	require.True(t, latest)
	snap := st.Snapshot()
	assert.Equal(t, "c1", snap.ActiveID)
	assert.Len(t, snap.Suggestions, 1)
}

func TestStaleGenerationDoesNotClobberDisplay(t *testing.T) {
	st := NewState(nil)

	old := st.BeginGeneration()
	newer := st.BeginGeneration()

	latest := st.ApplyGeneration(newer, testConversation("c-new"))
	require.True(t, latest)

	latest = st.ApplyGeneration(old, testConversation("c-old"))
	assert.False(t, latest)

	snap := st.Snapshot()
	assert.Equal(t, "c-new", snap.ActiveID, "stale completion must not move the active pointer")
}

func TestRapidGenerationsBothEnterHistory(t *testing.T) {
	st := NewState(nil)

	// Both requests begin before either completes, so both capture the
	// same (empty) active pointer and neither replaces the other.
	first := st.BeginGeneration()
	second := st.BeginGeneration()

	st.ApplyGeneration(first, testConversation("c1"))
	st.ApplyGeneration(second, testConversation("c2"))

	history := st.History()
	require.Len(t, history, 2)
	assert.Equal(t, "c2", history[0].ID)
	assert.Equal(t, "c1", history[1].ID)
}

func TestRegenerationReplacesActiveEntry(t *testing.T) {
	st := NewState(nil)

	gen := st.BeginGeneration()
	st.ApplyGeneration(gen, testConversation("c1"))

	regen := st.BeginGeneration()
	assert.Equal(t, "c1", regen.ReplaceID)
	st.ApplyGeneration(regen, testConversation("c2"))

	history := st.History()
	require.Len(t, history, 1)
	assert.Equal(t, "c2", history[0].ID)
}

func TestBeginGenerationClearsReview(t *testing.T) {
	st := NewState(nil)

	gen := st.BeginGeneration()
	st.ApplyGeneration(gen, testConversation("c1"))
	st.AttachReview(&model.SocialReview{SyncScore: 80, Mood: "playful"})
	require.NotNil(t, st.Snapshot().Review)

	st.BeginGeneration()
	assert.Nil(t, st.Snapshot().Review)
}

func TestAttachReviewPatchesActiveHistoryEntry(t *testing.T) {
	st := NewState(nil)

	gen := st.BeginGeneration()
	st.ApplyGeneration(gen, testConversation("c1"))

	updated := st.AttachReview(&model.SocialReview{SyncScore: 64})
	require.NotNil(t, updated)
	assert.Equal(t, "c1", updated.ID)

	history := st.History()
	require.NotNil(t, history[0].Review)
	assert.Equal(t, 64, history[0].Review.SyncScore)
}

func TestAttachReviewWithoutActiveConversation(t *testing.T) {
	st := NewState(nil)

	updated := st.AttachReview(&model.SocialReview{SyncScore: 10})

	assert.Nil(t, updated)
	assert.NotNil(t, st.Snapshot().Review)
}

func TestSelectConversationRestoresSnapshot(t *testing.T) {
	st := NewState(nil)

	conv := testConversation("c1")
	conv.Settings.CurrentVibe = "Flirty & Fun"
	conv.Settings.IsProfileSetup = false
	conv.Context.Thread = []model.ChatMessage{
		{Sender: model.SenderThem, Text: "hi", Timestamp: 1},
	}
	conv.Context.Type = model.ModeStatus

	gen := st.BeginGeneration()
	st.ApplyGeneration(gen, conv)
	st.NewConversation()

	require.NoError(t, st.SelectConversation("c1"))

	snap := st.Snapshot()
	assert.Equal(t, "c1", snap.ActiveID)
	assert.Equal(t, "Flirty & Fun", snap.Settings.CurrentVibe)
	assert.True(t, snap.Settings.IsProfileSetup, "restored settings always count as set up")
	assert.Equal(t, model.ModeStatus, snap.Mode)
	assert.Len(t, snap.Thread, 1)
	assert.Equal(t, ViewApp, snap.View)
}

func TestSelectConversationNotFound(t *testing.T) {
	st := NewState(nil)
	assert.Error(t, st.SelectConversation("missing"))
}

func TestDeleteActiveConversationResets(t *testing.T) {
	st := NewState(nil)
	st.UpdateSettings(model.UserSettings{UserName: "Sam", AgentName: "The Ghost", CurrentVibe: "Witty"})

	gen := st.BeginGeneration()
	st.ApplyGeneration(gen, testConversation("c1"))

	require.True(t, st.DeleteConversation("c1"))

	snap := st.Snapshot()
	assert.Empty(t, snap.ActiveID)
	assert.Empty(t, snap.History)
	assert.True(t, snap.SetupOpen)
	assert.Equal(t, "Sam", snap.Settings.UserName, "names survive a conversation reset")
	assert.Equal(t, model.DefaultSettings().CurrentVibe, snap.Settings.CurrentVibe)
}

func TestDeleteInactiveConversationKeepsWorkingState(t *testing.T) {
	st := NewState(nil)

	first := st.BeginGeneration()
	st.ApplyGeneration(first, testConversation("c1"))
	second := st.BeginGeneration()
	st.ApplyGeneration(second, testConversation("c2"))

	require.True(t, st.DeleteConversation("c1"))

	snap := st.Snapshot()
	assert.Equal(t, "c2", snap.ActiveID)
	assert.False(t, snap.SetupOpen)
}

func TestDeleteConversationMissing(t *testing.T) {
	st := NewState(nil)
	assert.False(t, st.DeleteConversation("missing"))
}

func TestReplyUsedFlipsStatusModeBack(t *testing.T) {
	st := NewState(nil)
	st.SetMode(model.ModeStatus)

	msg := st.ReplyUsed("sounds good")

	assert.Equal(t, model.SenderMe, msg.Sender)
	assert.Equal(t, model.ModeChat, st.Mode())
	require.Len(t, st.Snapshot().Thread, 1)
}

func TestRemoveMessageBounds(t *testing.T) {
	st := NewState(nil)
	st.AddMessage(model.ChatMessage{Sender: model.SenderThem, Text: "hi"})

	assert.Error(t, st.RemoveMessage(-1))
	assert.Error(t, st.RemoveMessage(1))
	assert.NoError(t, st.RemoveMessage(0))
	assert.Empty(t, st.Snapshot().Thread)
}

func TestAdoptLocalTakesNewestSettings(t *testing.T) {
	st := NewState(nil)

	newest := testConversation("c-new")
	newest.Settings.CurrentVibe = "Romantic"
	older := testConversation("c-old")

	st.AdoptLocal([]model.Conversation{newest, older})

	assert.Equal(t, "Romantic", st.Settings().CurrentVibe)
	assert.Len(t, st.History(), 2)
}

func TestAdoptLocalEmptyKeepsSettings(t *testing.T) {
	st := NewState(nil)
	st.UpdateSettings(model.UserSettings{UserName: "Sam"})

	st.AdoptLocal(nil)

	assert.Equal(t, "Sam", st.Settings().UserName)
}

func TestHistoryMutationsNotifyHook(t *testing.T) {
	var calls int
	st := NewState(func(history []model.Conversation) {
		calls++
	})

	gen := st.BeginGeneration()
	st.ApplyGeneration(gen, testConversation("c1"))
	st.AttachReview(&model.SocialReview{SyncScore: 1})
	st.DeleteConversation("c1")

	assert.Equal(t, 3, calls)
}

func TestResetReturnsToLanding(t *testing.T) {
	st := NewState(nil)
	gen := st.BeginGeneration()
	st.ApplyGeneration(gen, testConversation("c1"))
	st.SetView(ViewApp)

	st.Reset()

	snap := st.Snapshot()
	assert.Equal(t, ViewLanding, snap.View)
	assert.Empty(t, snap.History)
	assert.Empty(t, snap.ActiveID)
}

func TestManagerGetOrCreate(t *testing.T) {
	m := NewManager(nil)

	st, created := m.GetOrCreate("device-1")
	require.NotNil(t, st)
	assert.True(t, created)

	again, created := m.GetOrCreate("device-1")
	assert.False(t, created)
	assert.Same(t, st, again)
}

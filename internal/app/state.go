// Package app holds the per-device application state store. All state is
// mutated through action methods under one lock, decoupled from the HTTP
// layer; the authoritative history source (local cache or remote store) is
// selected elsewhere by session presence.
package app

import (
	"sync"
	"time"

	"github.com/replyhq/reply/internal/model"
	apperrors "github.com/replyhq/reply/pkg/errors"
)

// View is the top-level screen the client should render.
type View string

const (
	// ViewLanding is the initial unset state.
	ViewLanding View = "landing"
	// ViewOnboarding is the linear profile-setup wizard.
	ViewOnboarding View = "onboarding"
	// ViewApp is the main view.
	ViewApp View = "app"
)

// Snapshot is a point-in-time copy of a device's state.
type Snapshot struct {
	View        View                 `json:"view"`
	Settings    model.UserSettings   `json:"settings"`
	Thread      []model.ChatMessage  `json:"thread"`
	Suggestions []model.Suggestion   `json:"suggestions"`
	History     []model.Conversation `json:"history"`
	ActiveID    string               `json:"activeConversationId,omitempty"`
	Mode        model.ContextMode    `json:"mode"`
	Review      *model.SocialReview  `json:"review,omitempty"`
	SetupOpen   bool                 `json:"setupOpen"`
}

// State is one device's application state.
type State struct {
	mu          sync.Mutex
	view        View
	settings    model.UserSettings
	thread      []model.ChatMessage
	suggestions []model.Suggestion
	history     []model.Conversation
	activeID    string
	mode        model.ContextMode
	review      *model.SocialReview
	setupOpen   bool
	genSeq      uint64

	// onHistory runs after every history mutation, outside any decision
	// about which store is authoritative.
	onHistory func(history []model.Conversation)
}

// NewState creates a fresh state in the landing view. onHistory may be nil.
func NewState(onHistory func([]model.Conversation)) *State {
	return &State{
		view:      ViewLanding,
		settings:  model.DefaultSettings(),
		mode:      model.ModeChat,
		onHistory: onHistory,
	}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		View:        s.view,
		Settings:    s.settings,
		Thread:      append([]model.ChatMessage(nil), s.thread...),
		Suggestions: append([]model.Suggestion(nil), s.suggestions...),
		History:     append([]model.Conversation(nil), s.history...),
		ActiveID:    s.activeID,
		Mode:        s.mode,
		Review:      s.review,
		SetupOpen:   s.setupOpen,
	}
}

// View returns the current view.
func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView sets the current view.
func (s *State) SetView(v View) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

// Settings returns the current persona configuration.
func (s *State) Settings() model.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the persona configuration. Last write wins.
func (s *State) UpdateSettings(settings model.UserSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// FinalizeProfile marks setup complete and moves to the main view.
func (s *State) FinalizeProfile() model.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.IsProfileSetup = true
	s.setupOpen = false
	s.view = ViewApp
	return s.settings
}

// Mode returns the current input mode.
func (s *State) Mode() model.ContextMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode sets the current input mode.
func (s *State) SetMode(mode model.ContextMode) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
}

// AddMessage appends one message to the working thread.
func (s *State) AddMessage(msg model.ChatMessage) {
	s.mu.Lock()
	s.thread = append(s.thread, msg)
	s.mu.Unlock()
}

// RemoveMessage removes the thread entry at index.
func (s *State) RemoveMessage(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.thread) {
		return apperrors.InvalidArg("message index out of range")
	}
	s.thread = append(s.thread[:index], s.thread[index+1:]...)
	return nil
}

// ClearThread empties the working thread.
func (s *State) ClearThread() {
	s.mu.Lock()
	s.thread = nil
	s.mu.Unlock()
}

// ReplyUsed records that the user sent a suggested reply: it becomes a
// "me" message and status mode flips back to chat.
func (s *State) ReplyUsed(text string) model.ChatMessage {
	msg := model.ChatMessage{
		Sender:    model.SenderMe,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	s.mu.Lock()
	if s.mode == model.ModeStatus {
		s.mode = model.ModeChat
	}
	s.thread = append(s.thread, msg)
	s.mu.Unlock()
	return msg
}

// Context builds the message context for a generation request from the
// current thread and mode.
func (s *State) Context() model.MessageContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.MessageContext{
		Thread: append([]model.ChatMessage(nil), s.thread...),
		Type:   s.mode,
	}
}

// Generation is the bookkeeping for one in-flight generation request.
type Generation struct {
	Token     uint64
	ReplaceID string
	Settings  model.UserSettings
}

// BeginGeneration issues a new generation token and snapshots the settings
// and the active conversation id. Requests are never cancelled; the token
// decides whose result is displayed when completions race.
func (s *State) BeginGeneration() Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genSeq++
	s.review = nil
	return Generation{
		Token:     s.genSeq,
		ReplaceID: s.activeID,
		Settings:  s.settings,
	}
}

// ApplyGeneration records a completed generation. The conversation always
// enters history in completion order, replacing the entry that was active
// when the request began; the displayed suggestion set and active pointer
// move only if gen is still the latest issued token, so a stale response
// cannot overwrite a newer one.
func (s *State) ApplyGeneration(gen Generation, conv model.Conversation) bool {
	s.mu.Lock()
	kept := s.history[:0:0]
	kept = append(kept, conv)
	for _, c := range s.history {
		if gen.ReplaceID == "" || c.ID != gen.ReplaceID {
			kept = append(kept, c)
		}
	}
	s.history = kept
	latest := gen.Token == s.genSeq
	if latest {
		s.suggestions = conv.Suggestions
		s.activeID = conv.ID
	}
	history := append([]model.Conversation(nil), s.history...)
	onHistory := s.onHistory
	s.mu.Unlock()

	if onHistory != nil {
		onHistory(history)
	}
	return latest
}

// AttachReview attaches a review to the active conversation and returns
// the updated conversation, or nil when none is active.
func (s *State) AttachReview(review *model.SocialReview) *model.Conversation {
	s.mu.Lock()
	s.review = review
	var updated *model.Conversation
	if s.activeID != "" {
		for i := range s.history {
			if s.history[i].ID == s.activeID {
				s.history[i].Review = review
				c := s.history[i]
				updated = &c
				break
			}
		}
	}
	history := append([]model.Conversation(nil), s.history...)
	onHistory := s.onHistory
	s.mu.Unlock()

	if onHistory != nil && updated != nil {
		onHistory(history)
	}
	return updated
}

// History returns the current history, newest first.
func (s *State) History() []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Conversation(nil), s.history...)
}

// SelectConversation restores a history entry: its settings snapshot (with
// setup forced complete), suggestions, thread, mode and review become
// current.
func (s *State) SelectConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.history {
		if c.ID != id {
			continue
		}
		settings := c.Settings
		settings.IsProfileSetup = true
		s.settings = settings
		s.suggestions = append([]model.Suggestion(nil), c.Suggestions...)
		s.thread = append([]model.ChatMessage(nil), c.Context.Thread...)
		s.activeID = c.ID
		s.mode = c.Context.Type
		s.review = c.Review
		s.setupOpen = false
		s.view = ViewApp
		return nil
	}
	return apperrors.NotFound("conversation not found")
}

// DeleteConversation removes exactly one history entry by id. Deleting the
// active conversation resets the pointer and opens a fresh setup flow.
func (s *State) DeleteConversation(id string) bool {
	s.mu.Lock()
	removed := false
	kept := s.history[:0:0]
	for _, c := range s.history {
		if c.ID == id {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	s.history = kept
	if removed && s.activeID == id {
		s.resetConversationLocked()
	}
	history := append([]model.Conversation(nil), s.history...)
	onHistory := s.onHistory
	s.mu.Unlock()

	if removed && onHistory != nil {
		onHistory(history)
	}
	return removed
}

// NewConversation resets the working conversation, keeping the user and
// agent names, and opens the setup flow.
func (s *State) NewConversation() {
	s.mu.Lock()
	s.resetConversationLocked()
	s.mu.Unlock()
}

func (s *State) resetConversationLocked() {
	reset := model.DefaultSettings()
	reset.UserName = s.settings.UserName
	reset.AgentName = s.settings.AgentName
	reset.IsProfileSetup = true
	s.settings = reset
	s.suggestions = nil
	s.thread = nil
	s.activeID = ""
	s.mode = model.ModeChat
	s.review = nil
	s.setupOpen = true
}

// AdoptRemote replaces history with the remote copy verbatim. Remote wins;
// prior local content is discarded.
func (s *State) AdoptRemote(history []model.Conversation) {
	s.mu.Lock()
	s.history = append([]model.Conversation(nil), history...)
	s.mu.Unlock()
}

// AdoptLocal replaces history with the cached guest copy and, when
// non-empty, adopts the newest entry's settings snapshot.
func (s *State) AdoptLocal(history []model.Conversation) {
	s.mu.Lock()
	s.history = append([]model.Conversation(nil), history...)
	if len(history) > 0 {
		s.settings = history[0].Settings
	}
	s.mu.Unlock()
}

// Reset discards all in-memory state and returns to the entry view.
func (s *State) Reset() {
	s.mu.Lock()
	s.view = ViewLanding
	s.settings = model.DefaultSettings()
	s.thread = nil
	s.suggestions = nil
	s.history = nil
	s.activeID = ""
	s.mode = model.ModeChat
	s.review = nil
	s.setupOpen = false
	s.mu.Unlock()
}

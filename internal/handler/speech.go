package handler

import (
	"encoding/json"
	"net/http"

	"github.com/replyhq/reply/internal/audio"
	"github.com/replyhq/reply/internal/engine"
	"github.com/replyhq/reply/internal/middleware"
	"github.com/replyhq/reply/internal/syncer"
	"github.com/replyhq/reply/pkg/metrics"
)

// SpeechHandler synthesizes a suggestion into playable audio. One request
// at a time; overlapping requests are rejected rather than queued.
type SpeechHandler struct {
	sync        *syncer.Orchestrator
	synthesizer engine.Synthesizer
	player      *audio.Player
}

// NewSpeechHandler creates a new speech handler.
func NewSpeechHandler(sync *syncer.Orchestrator, synth engine.Synthesizer, player *audio.Player) *SpeechHandler {
	return &SpeechHandler{
		sync:        sync,
		synthesizer: synth,
		player:      player,
	}
}

// Synthesize handles POST /api/v1/speech. The response is a WAV container
// around the provider's PCM payload. The vibe defaults to the current
// persona vibe.
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Text string `json:"text"`
		Vibe string `json:"vibe,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateMessageText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Vibe == "" {
		st := h.sync.State(middleware.GetDeviceID(ctx), middleware.GetUserID(ctx) != "")
		req.Vibe = st.Settings().CurrentVibe
	}

	if !h.player.TryStart() {
		metrics.SpeechDropped.Inc()
		writeError(w, http.StatusConflict, "playback already in flight")
		return
	}
	defer h.player.Done()

	payload, err := h.synthesizer.Synthesize(ctx, req.Text, req.Vibe)
	if err != nil {
		metrics.SpeechTotal.WithLabelValues("error").Inc()
		writeAppError(w, err)
		return
	}

	pcm, err := audio.DecodeBase64PCM(payload)
	if err != nil {
		metrics.SpeechTotal.WithLabelValues("error").Inc()
		writeAppError(w, err)
		return
	}
	metrics.SpeechTotal.WithLabelValues("success").Inc()

	wav := audio.WAV(pcm, audio.SampleRate, audio.NumChannels)
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	w.Write(wav)
}

package engine

import (
	"fmt"
	"strings"

	"github.com/replyhq/reply/internal/model"
)

// Request is one provider-agnostic structured-generation request. A single
// builder produces it; every provider consumes it unchanged, so adding a
// provider adds no prompt logic.
type Request struct {
	System string
	Prompt string
	Schema *Schema
}

const humanityRules = `
    You are "Reply", a world-class Social Architect and Human Emulation layer.
    Your mission: Generate the perfect text response.

    HUMANITY & STYLE RULES:
    1. LOWERCASE: Use all lowercase for a relaxed, authentic feel, especially if Slang level is high (%d%%).
    2. ABBREVIATIONS: Use "u" for "you", "r" for "are", "fr" for "for real", "rn" for "right now", "tbh", "ngl", "lol", "dw", "idk".
    3. EMOJI INTELLIGENCE: Place emojis where they add subtext (e.g., 💀, 😭, 💅, 🫠).
    4. BREVITY: Matching word count is key. 12 words MAX.
    5. STORY PROGRESSION: Use Phase system (Rapport, Escalation, Pivot, Closer).

    You are a world-class social intelligence agent. Your goal is to help the user achieve "social victory" by providing the most effective, high-status, and engaging replies.

LINGUISTIC INTELLIGENCE:
- DEFAULT: Always respond in English unless the user uses another language.
- ADAPTABILITY: Be smart. Detect the user's linguistic style, dialect, and slang. Match their energy and language choice naturally. If they mix languages, you can mix them too.
- MULTILINGUAL: You support multiple languages and should respond in the language the user is using.

    CONTEXT:
    Situation: %s
    Goal: %s
    Relationship: %s
    Requested Vibe: %s
`

// SerializeThread renders a thread in the Me:/Them: transcript form the
// prompts use.
func SerializeThread(thread []model.ChatMessage) string {
	lines := make([]string, 0, len(thread))
	for _, m := range thread {
		who := "Them"
		if m.Sender == model.SenderMe {
			who = "Me"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", who, m.Text))
	}
	return strings.Join(lines, "\n")
}

// BuildReplyRequest builds the suggestion-batch request from the persona
// configuration and thread state.
func BuildReplyRequest(settings model.UserSettings, context model.MessageContext) *Request {
	system := fmt.Sprintf(humanityRules,
		settings.Humanity,
		settings.Situation,
		settings.Goal,
		settings.Relationship,
		settings.CurrentVibe,
	)

	lastFromThem := "n/a"
	if last, ok := context.LastFromThem(); ok {
		lastFromThem = last.Text
	}
	threadText := SerializeThread(context.Thread)
	if threadText == "" {
		threadText = "Start the convo."
	}

	prompt := fmt.Sprintf(`
    LAST MESSAGE FROM THEM: %s
    THREAD:
    %s

    Generate 10 strategic next moves in JSON.
`, lastFromThem, threadText)

	return &Request{
		System: system,
		Prompt: prompt,
		Schema: suggestionSchema(),
	}
}

// BuildReviewRequest builds the one-shot social review request.
func BuildReviewRequest(settings model.UserSettings, context model.MessageContext) *Request {
	prompt := fmt.Sprintf(`
    Review the conversation architecture.
    Situation: "%s"
    Goal: "%s".
    History:
    %s
`, settings.Situation, settings.Goal, SerializeThread(context.Thread))

	return &Request{
		System: "Analyze dialogue velocity and social distance. Output JSON.",
		Prompt: prompt,
		Schema: reviewSchema(),
	}
}

// BuildRefineRequest builds the request that distills a raw situation
// description into a strategic situation and a sharp goal.
func BuildRefineRequest(rawInput string) *Request {
	prompt := fmt.Sprintf(`The user provided this raw explanation of their situation: "%s".
    DISTILL this into:
    1. A strategic "Situation" (The background tension, context, and current state).
    2. A sharp "Goal" (What they want to achieve in this specific chat).
    Output JSON.`, rawInput)

	return &Request{
		Prompt: prompt,
		Schema: refineSchema(),
	}
}

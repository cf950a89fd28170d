package ai

import (
	"fmt"
	"strings"

	"github.com/priyansh-soni/honeypot-agent/internal/model/persona"
	session "github.com/priyansh-soni/honeypot-agent/internal/model/session"
)

const detectorSystemPrompt = "You are a scam detection expert. Classify the given message as a scam or a legitimate message. Look for these indicators: urgency language (act now, limited time), suspicious URLs or shortened links, requests for sensitive information (OTP, password, bank details, CVV), impersonation of banks or government institutions, unsolicited job offers or prize notifications, poor grammar and spelling. Consider the conversation history as context; a message can be part of a scam even without obvious indicators on its own. If the message is not in English, translate it before analyzing. Return ONLY a valid JSON object with these keys: is_scam (boolean), confidence (float from 0.0 to 1.0), reason (brief explanation), indicators (list of detected patterns). Be strict: reserve confidence above 0.7 for clear and obvious scams. Do not output anything besides the JSON object."

const detectorUserPrompt = "Conversation history:\n{history}\n\nMessage to analyze:\n\"{message}\"\n\nJSON response:"

const actorBasePrompt = "You are impersonating a potential scam victim in a controlled research honeypot. NEVER admit you are an AI or that you have detected a scam. Your goal is to keep the other party engaged for as long as possible so they reveal identifying details. Keep your responses under 150 characters. Generate a believable reply to the latest message, consistent with the conversation so far."

// buildActorSystemPrompt folds the persona profile into the actor's
// base instructions.
func buildActorSystemPrompt(p *persona.Persona) string {
	if p == nil {
		return actorBasePrompt
	}

	var builder strings.Builder
	builder.WriteString(actorBasePrompt)
	builder.WriteString(fmt.Sprintf("\n\nYour persona: %s, age %s.\n", p.Name, p.Age))
	builder.WriteString(p.PromptHint)
	if len(p.Traits) > 0 {
		builder.WriteString("\nTraits: ")
		builder.WriteString(strings.Join(p.Traits, ", "))
		builder.WriteString(".")
	}
	if len(p.SpeechPatterns) > 0 {
		builder.WriteString("\nUse phrases like: ")
		builder.WriteString(fmt.Sprintf("%q", strings.Join(p.SpeechPatterns, "\" \"")))
	}
	return builder.String()
}

// formatHistory renders recent messages as plain text for the detector
// prompt. The scammer side keeps its own label so the model can track
// who said what.
func formatHistory(messages []session.Message, limit int) string {
	if len(messages) == 0 {
		return "No prior messages."
	}
	if limit < 1 {
		limit = 1
	}
	start := len(messages) - limit
	if start < 0 {
		start = 0
	}

	var builder strings.Builder
	for i := start; i < len(messages); i++ {
		msg := messages[i]
		content := strings.TrimSpace(msg.Text)
		if content == "" {
			continue
		}
		role := "victim"
		if strings.EqualFold(msg.Sender, "scammer") {
			role = "scammer"
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(role)
		builder.WriteString(": ")
		builder.WriteString(content)
	}
	if builder.Len() == 0 {
		return "No prior messages."
	}
	return builder.String()
}

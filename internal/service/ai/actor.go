package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/priyansh-soni/honeypot-agent/internal/model/persona"
	session "github.com/priyansh-soni/honeypot-agent/internal/model/session"
	"github.com/priyansh-soni/honeypot-agent/pkg/retry"
)

// Actor generates in-character victim replies that keep a scammer
// talking.
type Actor struct {
	chain        compose.Runnable[map[string]any, *schema.Message]
	historyLimit int
	attempts     int
	retryDelay   time.Duration
}

// NewActor compiles the reply chain on top of an existing chat model
// instance.
func NewActor(ctx context.Context, chatModel model.ChatModel) (*Actor, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile actor chain: %w", err)
	}

	return &Actor{
		chain:        runnable,
		historyLimit: 10,
		attempts:     3,
		retryDelay:   time.Second,
	}, nil
}

// Respond produces the persona's reply to the latest scammer message.
func (a *Actor) Respond(ctx context.Context, p *persona.Persona, history []session.Message, userMessage string) (string, error) {
	input := map[string]any{
		"system":  buildActorSystemPrompt(p),
		"history": a.buildHistoryMessages(history),
		"query":   userMessage,
	}

	var reply string
	err := retry.Do(ctx, a.attempts, a.retryDelay, func(ctx context.Context) error {
		msg, err := a.chain.Invoke(ctx, input)
		if err != nil {
			return fmt.Errorf("actor chain invoke: %w", err)
		}
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			return fmt.Errorf("actor returned empty content")
		}
		reply = cleanReply(msg.Content)
		return nil
	})
	if err != nil {
		log.Printf("[actor] reply generation failed: %v", err)
		return "", err
	}

	personaID := ""
	if p != nil {
		personaID = p.ID
	}
	log.Printf("[actor] generated reply persona=%s length=%d", personaID, len(reply))
	return reply, nil
}

// buildHistoryMessages maps stored conversation turns onto chat roles.
// The scammer plays the user side of the exchange; our replies are the
// assistant side.
func (a *Actor) buildHistoryMessages(messages []session.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > a.historyLimit {
		startIdx = len(messages) - a.historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		if strings.EqualFold(msg.Sender, "scammer") {
			history = append(history, schema.UserMessage(msg.Text))
		} else {
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}

	return history
}

// cleanReply strips markdown fences and surrounding quotes the model
// sometimes wraps around a short reply.
func cleanReply(content string) string {
	reply := strings.TrimSpace(content)
	if strings.HasPrefix(reply, "```") {
		reply = strings.TrimPrefix(reply, "```")
		if idx := strings.Index(reply, "\n"); idx != -1 && !strings.Contains(reply[:idx], " ") {
			reply = reply[idx+1:]
		}
		reply = strings.TrimSuffix(strings.TrimSpace(reply), "```")
		reply = strings.TrimSpace(reply)
	}
	reply = strings.Trim(reply, "\"")
	return strings.TrimSpace(reply)
}

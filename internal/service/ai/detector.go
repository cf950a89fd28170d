package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	session "github.com/priyansh-soni/honeypot-agent/internal/model/session"
	"github.com/priyansh-soni/honeypot-agent/pkg/retry"
)

// Verdict is the detector's classification of a single message.
type Verdict struct {
	IsScam     bool     `json:"is_scam"`
	Confidence float64  `json:"confidence"`
	Reason     string   `json:"reason"`
	Indicators []string `json:"indicators"`
}

// Detector classifies incoming messages as scam or legitimate using a
// chat model chain.
type Detector struct {
	chain        compose.Runnable[map[string]any, *schema.Message]
	historyLimit int
	attempts     int
	retryDelay   time.Duration
}

// NewDetector compiles the classification chain on top of an existing
// chat model instance.
func NewDetector(ctx context.Context, chatModel model.ChatModel) (*Detector, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(detectorSystemPrompt),
		schema.UserMessage(detectorUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile detector chain: %w", err)
	}

	return &Detector{
		chain:        runnable,
		historyLimit: 10,
		attempts:     3,
		retryDelay:   time.Second,
	}, nil
}

// Classify runs the detector on a message with its conversation
// context. Empty messages never reach the model.
func (d *Detector) Classify(ctx context.Context, text string, history []session.Message) (Verdict, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Verdict{IsScam: false, Confidence: 0.0, Reason: "message was empty"}, nil
	}

	input := map[string]any{
		"history": formatHistory(history, d.historyLimit),
		"message": trimmed,
	}

	var verdict Verdict
	err := retry.Do(ctx, d.attempts, d.retryDelay, func(ctx context.Context) error {
		msg, err := d.chain.Invoke(ctx, input)
		if err != nil {
			return fmt.Errorf("detector chain invoke: %w", err)
		}
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			return fmt.Errorf("detector returned empty content")
		}

		parsed, err := parseVerdict(msg.Content)
		if err != nil {
			return fmt.Errorf("detector output parse: %w", err)
		}
		verdict = parsed
		return nil
	})
	if err != nil {
		log.Printf("[detector] classification failed: %v", err)
		return Verdict{}, err
	}

	return verdict, nil
}

// parseVerdict extracts the JSON object from the model output, which
// may be wrapped in markdown fences or surrounding prose.
func parseVerdict(content string) (Verdict, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return Verdict{}, fmt.Errorf("missing json object")
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &verdict); err != nil {
		return Verdict{}, err
	}

	if verdict.Confidence < 0 {
		verdict.Confidence = 0
	}
	if verdict.Confidence > 1 {
		verdict.Confidence = 1
	}
	return verdict, nil
}

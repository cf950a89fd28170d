package engage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/priyansh-soni/honeypot-agent/internal/analysis/intel"
	"github.com/priyansh-soni/honeypot-agent/internal/model/persona"
	model "github.com/priyansh-soni/honeypot-agent/internal/model/session"
	"github.com/priyansh-soni/honeypot-agent/internal/service/ai"
	sessionstore "github.com/priyansh-soni/honeypot-agent/internal/service/session"
)

// Classifier decides whether a message belongs to a scam conversation.
// *ai.Detector satisfies it; tests substitute stubs.
type Classifier interface {
	Classify(ctx context.Context, text string, history []model.Message) (ai.Verdict, error)
}

// Responder generates the in-character reply. *ai.Actor satisfies it.
type Responder interface {
	Respond(ctx context.Context, p *persona.Persona, history []model.Message, text string) (string, error)
}

const (
	// engagementThreshold is the classifier confidence above which the
	// actor engages instead of sending the brush-off reply.
	engagementThreshold = 0.7

	nonEngagementReply = "Thank you for your message. I will pass this along."
	fallbackReply      = "I'm not sure what to say about that."
)

// Request carries one inbound message cycle.
type Request struct {
	SessionID string
	Message   model.Message
	History   []model.Message
	Metadata  map[string]string
}

// Metrics summarizes one processed cycle.
type Metrics struct {
	ConversationTurn       int     `json:"conversationTurn"`
	ResponseTimeMs         int64   `json:"responseTimeMs"`
	TotalIntelligenceItems int     `json:"totalIntelligenceItems"`
	ConfidenceScore        float64 `json:"confidenceScore"`
}

// Result is the cycle outcome returned to the API layer.
type Result struct {
	Status                string             `json:"status"`
	ScamDetected          bool               `json:"scamDetected"`
	AgentResponse         string             `json:"agentResponse"`
	ExtractedIntelligence model.Intelligence `json:"extractedIntelligence"`
	EngagementMetrics     Metrics            `json:"engagementMetrics"`
	ContinueConversation  bool               `json:"continueConversation"`
	AgentNotes            string             `json:"agentNotes"`
}

// Coordinator sequences one message cycle across the classifier, the
// persona store, the responder, the extraction engine and the session
// store. External calls always happen outside any store lock.
type Coordinator struct {
	store      *sessionstore.Store
	personas   persona.Store
	classifier Classifier
	responder  Responder
	limits     model.Limits
}

// NewCoordinator wires the cycle dependencies. classifier and responder
// may be nil; the coordinator then substitutes the documented
// fallbacks, which keeps the service usable without model credentials.
func NewCoordinator(store *sessionstore.Store, personas persona.Store, classifier Classifier, responder Responder, limits model.Limits) *Coordinator {
	return &Coordinator{
		store:      store,
		personas:   personas,
		classifier: classifier,
		responder:  responder,
		limits:     limits,
	}
}

// ProcessMessage runs one full inbound message cycle.
func (c *Coordinator) ProcessMessage(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if req.SessionID == "" {
		return nil, fmt.Errorf("session id must not be empty")
	}

	c.store.GetOrCreate(req.SessionID)

	verdict := c.classify(ctx, req)
	c.store.SetScamDetected(req.SessionID, verdict.IsScam)

	engaging := verdict.IsScam && verdict.Confidence > engagementThreshold

	reply := nonEngagementReply
	if engaging {
		activePersona := c.ensurePersona(req)
		reply = c.respond(ctx, activePersona, req)
	}

	findings := intel.ExtractAll(req.Message.Text)
	c.store.MergeEvidence(req.SessionID, findings)

	inbound := req.Message
	if inbound.Sender == "" {
		inbound.Sender = "scammer"
	}
	if _, err := c.store.RecordTurn(req.SessionID, inbound); err != nil {
		return nil, fmt.Errorf("record inbound turn: %w", err)
	}
	if reply != "" {
		agentMsg := model.Message{Sender: "honeypot-agent", Text: reply}
		if _, err := c.store.RecordTurn(req.SessionID, agentMsg); err != nil {
			return nil, fmt.Errorf("record reply turn: %w", err)
		}
	}

	shouldEnd := c.store.EvaluateTermination(req.SessionID, c.limits)

	summary, err := c.store.Snapshot(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("snapshot session: %w", err)
	}

	if shouldEnd {
		log.Printf("[engage] conversation ended session=%s turns=%d", req.SessionID, summary.TurnCount)
	}

	return &Result{
		Status:                "success",
		ScamDetected:          summary.ScamDetected,
		AgentResponse:         reply,
		ExtractedIntelligence: summary.ExtractedIntelligence,
		EngagementMetrics: Metrics{
			ConversationTurn:       summary.TurnCount,
			ResponseTimeMs:         time.Since(start).Milliseconds(),
			TotalIntelligenceItems: summary.ExtractedIntelligence.TotalItems(),
			ConfidenceScore:        verdict.Confidence,
		},
		ContinueConversation: !shouldEnd,
		AgentNotes:           verdict.Reason,
	}, nil
}

// Snapshot exposes the current session summary to the API layer.
func (c *Coordinator) Snapshot(sessionID string) (model.Summary, error) {
	return c.store.Snapshot(sessionID)
}

// Limits returns the termination knobs the coordinator evaluates with.
func (c *Coordinator) Limits() model.Limits {
	return c.limits
}

// classify runs the external classifier and absorbs its failures into
// the documented neutral verdict.
func (c *Coordinator) classify(ctx context.Context, req Request) ai.Verdict {
	unavailable := ai.Verdict{IsScam: false, Confidence: 0.5, Reason: "classification unavailable"}
	if c.classifier == nil {
		return unavailable
	}

	verdict, err := c.classifier.Classify(ctx, req.Message.Text, c.fullContext(req))
	if err != nil {
		log.Printf("[engage] classifier unavailable session=%s: %v", req.SessionID, err)
		return unavailable
	}
	return verdict
}

// ensurePersona derives and pins the session persona on first
// engagement, then reads the winning value back so concurrent cycles
// all act with the same profile.
func (c *Coordinator) ensurePersona(req Request) *persona.Persona {
	summary, err := c.store.Snapshot(req.SessionID)
	if err != nil {
		return nil
	}

	if summary.PersonaUsed == "" {
		derived := persona.Derive(req.Message.Text)
		c.store.SetPersona(req.SessionID, derived)
		if summary, err = c.store.Snapshot(req.SessionID); err != nil {
			return nil
		}
	}

	p, ok := c.personas.FindByID(summary.PersonaUsed)
	if !ok {
		log.Printf("[engage] unknown persona %q session=%s", summary.PersonaUsed, req.SessionID)
		return nil
	}
	return &p
}

// respond runs the external responder and substitutes the fixed
// fallback reply on any failure.
func (c *Coordinator) respond(ctx context.Context, p *persona.Persona, req Request) string {
	if c.responder == nil {
		return fallbackReply
	}

	reply, err := c.responder.Respond(ctx, p, c.fullContext(req), req.Message.Text)
	if err != nil || reply == "" {
		log.Printf("[engage] responder unavailable session=%s: %v", req.SessionID, err)
		return fallbackReply
	}
	return reply
}

// fullContext is the request-supplied history; the inbound message
// itself is passed to collaborators separately.
func (c *Coordinator) fullContext(req Request) []model.Message {
	return req.History
}

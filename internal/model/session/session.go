package session

import "time"

// Category identifies one of the fixed kinds of intelligence the
// investigator extracts from scammer messages.
type Category string

const (
	CategoryBankAccounts  Category = "bankAccounts"
	CategoryUPIIDs        Category = "upiIds"
	CategoryPhishingLinks Category = "phishingLinks"
	CategoryPhoneNumbers  Category = "phoneNumbers"
	CategoryKeywords      Category = "suspiciousKeywords"
)

// Categories returns the fixed category set in canonical order.
func Categories() []Category {
	return []Category{
		CategoryBankAccounts,
		CategoryUPIIDs,
		CategoryPhishingLinks,
		CategoryPhoneNumbers,
		CategoryKeywords,
	}
}

// Message records one turn of a conversation. Timestamps are carried as
// the channel supplied them; the store fills in the current UTC time
// when a message arrives without one.
type Message struct {
	ID        string `json:"id,omitempty"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Intelligence maps categories to deduplicated, sorted values. The same
// shape serves per-message extraction results and the accumulated
// per-session evidence exposed in summaries.
type Intelligence map[Category][]string

// CategoriesFound counts categories holding at least one value.
func (i Intelligence) CategoriesFound() int {
	found := 0
	for _, values := range i {
		if len(values) > 0 {
			found++
		}
	}
	return found
}

// TotalItems counts values across all categories.
func (i Intelligence) TotalItems() int {
	total := 0
	for _, values := range i {
		total += len(values)
	}
	return total
}

// Limits holds the termination policy knobs applied to every session.
type Limits struct {
	MaxTurns      int
	MinCategories int
	StaleTurns    int
}

// Summary is an immutable copy of a session's state for external
// consumption. Evidence sets are rendered as sorted lists.
type Summary struct {
	SessionID             string       `json:"sessionId"`
	TurnCount             int          `json:"turnCount"`
	ScamDetected          bool         `json:"scamDetected"`
	PersonaUsed           string       `json:"personaUsed"`
	ExtractedIntelligence Intelligence `json:"extractedIntelligence"`
	ConversationActive    bool         `json:"conversationActive"`
	LastIntelligenceTurn  int          `json:"lastIntelligenceTurn"`
	CreatedAt             time.Time    `json:"createdAt"`
	ConversationHistory   []Message    `json:"conversationHistory"`
}

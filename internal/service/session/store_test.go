package session

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	model "github.com/priyansh-soni/honeypot-agent/internal/model/session"
)

func scamMsg(text string) model.Message {
	return model.Message{Sender: "scammer", Text: text}
}

func TestGetOrCreateDefaults(t *testing.T) {
	store := NewStore()
	summary := store.GetOrCreate("s1")

	if summary.SessionID != "s1" {
		t.Fatalf("unexpected id %s", summary.SessionID)
	}
	if summary.TurnCount != 0 || summary.LastIntelligenceTurn != 0 {
		t.Fatalf("fresh session has turns: %+v", summary)
	}
	if !summary.ConversationActive {
		t.Fatal("fresh session inactive")
	}
	if summary.CreatedAt.IsZero() {
		t.Fatal("createdAt not set")
	}
	if len(summary.ExtractedIntelligence) != 5 {
		t.Fatalf("expected 5 evidence categories, got %d", len(summary.ExtractedIntelligence))
	}
}

func TestGetOrCreateIsStable(t *testing.T) {
	store := NewStore()
	first := store.GetOrCreate("s1")
	if _, err := store.RecordTurn("s1", scamMsg("hello")); err != nil {
		t.Fatalf("RecordTurn err: %v", err)
	}

	second := store.GetOrCreate("s1")
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatal("second lookup created a new session")
	}
	if second.TurnCount != 1 {
		t.Fatalf("expected turn count 1, got %d", second.TurnCount)
	}
}

func TestConcurrentGetOrCreateSingleSession(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.GetOrCreate("race")
			if _, err := store.RecordTurn("race", scamMsg("hi")); err != nil {
				t.Errorf("RecordTurn err: %v", err)
			}
		}()
	}
	wg.Wait()

	summary, err := store.Snapshot("race")
	if err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}
	if summary.TurnCount != 32 {
		t.Fatalf("expected 32 turns on one session, got %d", summary.TurnCount)
	}
	if len(summary.ConversationHistory) != 32 {
		t.Fatalf("history length %d != turn count", len(summary.ConversationHistory))
	}
}

func TestRecordTurnUnknownSession(t *testing.T) {
	store := NewStore()
	if _, err := store.RecordTurn("ghost", scamMsg("hi")); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRecordTurnFillsMessageDefaults(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")
	if _, err := store.RecordTurn("s1", scamMsg("hello")); err != nil {
		t.Fatalf("RecordTurn err: %v", err)
	}

	summary, _ := store.Snapshot("s1")
	msg := summary.ConversationHistory[0]
	if msg.ID == "" || msg.Timestamp == "" {
		t.Fatalf("message defaults not filled: %+v", msg)
	}
}

func TestHistoryLengthTracksTurnCount(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")
	for i := 0; i < 6; i++ {
		sender := "scammer"
		if i%2 == 1 {
			sender = "honeypot-agent"
		}
		if _, err := store.RecordTurn("s1", model.Message{Sender: sender, Text: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("RecordTurn err: %v", err)
		}
	}

	summary, _ := store.Snapshot("s1")
	if summary.TurnCount != 6 || len(summary.ConversationHistory) != 6 {
		t.Fatalf("turns=%d history=%d", summary.TurnCount, len(summary.ConversationHistory))
	}
}

func TestMergeEvidenceMonotonicGrowth(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")

	previous := map[model.Category][]string{}
	batches := []model.Intelligence{
		{model.CategoryBankAccounts: {"123456789012"}},
		{model.CategoryBankAccounts: {"987654321098"}, model.CategoryKeywords: {"urgent"}},
		{model.CategoryKeywords: {"otp", "urgent"}},
		{model.CategoryPhoneNumbers: {"+919876543210"}},
	}

	for i, batch := range batches {
		store.MergeEvidence("s1", batch)
		summary, _ := store.Snapshot("s1")
		for cat, before := range previous {
			after := summary.ExtractedIntelligence[cat]
			for _, v := range before {
				found := false
				for _, w := range after {
					if v == w {
						found = true
						break
					}
				}
				if !found {
					t.Fatalf("batch %d: value %s vanished from %s", i, v, cat)
				}
			}
		}
		for cat, values := range summary.ExtractedIntelligence {
			previous[cat] = values
		}
	}
}

func TestMergeEvidenceIdempotent(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")

	findings := model.Intelligence{
		model.CategoryUPIIDs:   {"scammer@paytm"},
		model.CategoryKeywords: {"urgent", "verify"},
	}

	if !store.MergeEvidence("s1", findings) {
		t.Fatal("first merge reported no growth")
	}
	if store.MergeEvidence("s1", findings) {
		t.Fatal("identical second merge reported growth")
	}

	summary, _ := store.Snapshot("s1")
	if !reflect.DeepEqual(summary.ExtractedIntelligence[model.CategoryUPIIDs], []string{"scammer@paytm"}) {
		t.Fatalf("unexpected upi set: %v", summary.ExtractedIntelligence[model.CategoryUPIIDs])
	}
	if !reflect.DeepEqual(summary.ExtractedIntelligence[model.CategoryKeywords], []string{"urgent", "verify"}) {
		t.Fatalf("unexpected keyword set: %v", summary.ExtractedIntelligence[model.CategoryKeywords])
	}
}

func TestMergeEvidencePinsLastIntelligenceTurn(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")
	store.RecordTurn("s1", scamMsg("one"))
	store.RecordTurn("s1", scamMsg("two"))

	store.MergeEvidence("s1", model.Intelligence{model.CategoryKeywords: {"urgent"}})

	summary, _ := store.Snapshot("s1")
	if summary.LastIntelligenceTurn != 2 {
		t.Fatalf("expected lastIntelligenceTurn 2, got %d", summary.LastIntelligenceTurn)
	}

	// A merge with nothing new must not move the marker.
	store.RecordTurn("s1", scamMsg("three"))
	store.MergeEvidence("s1", model.Intelligence{model.CategoryKeywords: {"urgent"}})
	summary, _ = store.Snapshot("s1")
	if summary.LastIntelligenceTurn != 2 {
		t.Fatalf("marker moved without growth: %d", summary.LastIntelligenceTurn)
	}
}

func TestSetPersonaFirstWriteWins(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")

	store.SetPersona("s1", "")
	store.SetPersona("s1", "elderly")
	store.SetPersona("s1", "professional")

	summary, _ := store.Snapshot("s1")
	if summary.PersonaUsed != "elderly" {
		t.Fatalf("expected persona elderly, got %q", summary.PersonaUsed)
	}
}

func TestSetScamDetectedOverwrites(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")

	store.SetScamDetected("s1", true)
	store.SetScamDetected("s1", false)

	summary, _ := store.Snapshot("s1")
	if summary.ScamDetected {
		t.Fatal("scam flag should reflect the last verdict")
	}
}

func TestTerminationMaxTurns(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")
	limits := model.Limits{MaxTurns: 3, MinCategories: 99, StaleTurns: 99}

	for i := 0; i < 3; i++ {
		store.RecordTurn("s1", scamMsg("msg"))
	}

	if !store.EvaluateTermination("s1", limits) {
		t.Fatal("expected termination at max turns")
	}
	summary, _ := store.Snapshot("s1")
	if summary.ConversationActive {
		t.Fatal("session still active after termination")
	}
}

func TestTerminationEnoughCategoriesNeedsSecondTurn(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")
	limits := model.Limits{MaxTurns: 99, MinCategories: 2, StaleTurns: 99}

	store.RecordTurn("s1", scamMsg("msg"))
	store.MergeEvidence("s1", model.Intelligence{
		model.CategoryBankAccounts: {"123456789012"},
		model.CategoryKeywords:     {"urgent"},
	})

	// Two categories present but only one turn taken.
	if store.EvaluateTermination("s1", limits) {
		t.Fatal("terminated on the very first turn")
	}

	store.RecordTurn("s1", scamMsg("msg"))
	if !store.EvaluateTermination("s1", limits) {
		t.Fatal("expected termination with 2 categories after turn 2")
	}
}

func TestTerminationStaleConversation(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")
	limits := model.Limits{MaxTurns: 99, MinCategories: 99, StaleTurns: 2}

	store.RecordTurn("s1", scamMsg("one"))
	store.MergeEvidence("s1", model.Intelligence{model.CategoryKeywords: {"urgent"}})

	store.RecordTurn("s1", scamMsg("two"))
	if store.EvaluateTermination("s1", limits) {
		t.Fatal("terminated with only one stale turn")
	}

	store.RecordTurn("s1", scamMsg("three"))
	if !store.EvaluateTermination("s1", limits) {
		t.Fatal("expected stale termination at turn 3")
	}
}

func TestTerminationNeverOnEmptySession(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")
	limits := model.Limits{MaxTurns: 99, MinCategories: 99, StaleTurns: 1}

	// turnCount == 0 blocks the staleness rule.
	if store.EvaluateTermination("s1", limits) {
		t.Fatal("terminated a session with no turns")
	}
}

func TestTerminationIsTerminal(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")
	limits := model.Limits{MaxTurns: 2, MinCategories: 99, StaleTurns: 99}

	store.RecordTurn("s1", scamMsg("one"))
	store.RecordTurn("s1", scamMsg("two"))
	if !store.EvaluateTermination("s1", limits) {
		t.Fatal("expected termination")
	}

	// New evidence after the end must not resurrect the session, even
	// under limits the live rules would no longer trip.
	store.MergeEvidence("s1", model.Intelligence{model.CategoryKeywords: {"urgent"}})
	relaxed := model.Limits{MaxTurns: 99, MinCategories: 99, StaleTurns: 99}
	if !store.EvaluateTermination("s1", relaxed) {
		t.Fatal("ended session reported as continuing")
	}
	summary, _ := store.Snapshot("s1")
	if summary.ConversationActive {
		t.Fatal("ended session became active again")
	}
}

func TestTerminationUnknownSessionEnds(t *testing.T) {
	store := NewStore()
	if !store.EvaluateTermination("ghost", model.Limits{MaxTurns: 99, MinCategories: 99, StaleTurns: 99}) {
		t.Fatal("unknown session should be treated as ended")
	}
}

func TestSnapshotSortsEvidence(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")
	store.MergeEvidence("s1", model.Intelligence{model.CategoryKeywords: {"verify", "alert", "urgent"}})

	summary, _ := store.Snapshot("s1")
	want := []string{"alert", "urgent", "verify"}
	if !reflect.DeepEqual(summary.ExtractedIntelligence[model.CategoryKeywords], want) {
		t.Fatalf("expected sorted %v, got %v", want, summary.ExtractedIntelligence[model.CategoryKeywords])
	}
}

func TestSnapshotUnknownSession(t *testing.T) {
	store := NewStore()
	if _, err := store.Snapshot("ghost"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1")
	store.RecordTurn("s1", scamMsg("one"))

	summary, _ := store.Snapshot("s1")
	summary.ConversationHistory[0].Text = "tampered"
	summary.ExtractedIntelligence[model.CategoryKeywords] = append(summary.ExtractedIntelligence[model.CategoryKeywords], "fake")

	fresh, _ := store.Snapshot("s1")
	if fresh.ConversationHistory[0].Text != "one" {
		t.Fatal("history mutated through snapshot")
	}
	if len(fresh.ExtractedIntelligence[model.CategoryKeywords]) != 0 {
		t.Fatal("evidence mutated through snapshot")
	}
}

package session

import (
	"errors"
	"hash/fnv"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	model "github.com/priyansh-soni/honeypot-agent/internal/model/session"
)

// ErrSessionNotFound is returned when an operation references a session
// id that was never created.
var ErrSessionNotFound = errors.New("session not found")

const shardCount = 16

// state is the mutable per-conversation record. It is only ever touched
// while the owning shard's lock is held.
type state struct {
	id               string
	turnCount        int
	scamDetected     bool
	persona          string
	evidence         map[model.Category]map[string]struct{}
	active           bool
	lastEvidenceTurn int
	createdAt        time.Time
	history          []model.Message
}

type shard struct {
	mu       sync.RWMutex
	sessions map[string]*state
}

// Store owns all conversation state. Sessions are spread over a fixed
// set of shards keyed by a hash of the session id, so operations on
// unrelated sessions do not contend on one lock. Every exported
// operation is atomic with respect to every other operation on the same
// session id.
type Store struct {
	shards [shardCount]*shard
}

// NewStore bootstraps an empty in-memory session store.
func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i] = &shard{sessions: make(map[string]*state)}
	}
	return s
}

func (s *Store) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return s.shards[h.Sum32()%shardCount]
}

func newState(id string) *state {
	evidence := make(map[model.Category]map[string]struct{}, 5)
	for _, cat := range model.Categories() {
		evidence[cat] = make(map[string]struct{})
	}
	return &state{
		id:        id,
		evidence:  evidence,
		active:    true,
		createdAt: time.Now().UTC(),
		history:   make([]model.Message, 0, 16),
	}
}

// GetOrCreate returns a snapshot of the session, creating it with
// defaults on first reference. Creation happens under the shard lock so
// two concurrent calls for an unseen id observe the same session.
func (s *Store) GetOrCreate(id string) model.Summary {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.sessions[id]
	if !ok {
		st = newState(id)
		sh.sessions[id] = st
		log.Printf("[store] created session %s", id)
	}
	return snapshotLocked(st)
}

// RecordTurn appends the message to the session history and increments
// the turn count, returning the new count.
func (s *Store) RecordTurn(id string, msg model.Message) (int, error) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.sessions[id]
	if !ok {
		return 0, ErrSessionNotFound
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	st.history = append(st.history, msg)
	st.turnCount++
	return st.turnCount, nil
}

// SetScamDetected unconditionally overwrites the last classifier
// verdict. Unknown sessions are logged, not fatal.
func (s *Store) SetScamDetected(id string, isScam bool) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.sessions[id]
	if !ok {
		log.Printf("[store] scam flag for unknown session %s ignored", id)
		return
	}
	st.scamDetected = isScam
}

// SetPersona assigns the persona once; the first non-empty assignment
// wins and all later attempts are no-ops.
func (s *Store) SetPersona(id, persona string) {
	if persona == "" {
		return
	}

	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.sessions[id]
	if !ok {
		log.Printf("[store] persona for unknown session %s ignored", id)
		return
	}
	if st.persona == "" {
		st.persona = persona
	}
}

// MergeEvidence unions the findings into the session's evidence sets.
// It reports whether any value was actually new anywhere; if so, the
// session's last-intelligence turn is pinned to the current turn count.
func (s *Store) MergeEvidence(id string, findings model.Intelligence) bool {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.sessions[id]
	if !ok {
		log.Printf("[store] evidence for unknown session %s dropped", id)
		return false
	}

	grew := false
	for cat, values := range findings {
		set, ok := st.evidence[cat]
		if !ok {
			set = make(map[string]struct{})
			st.evidence[cat] = set
		}
		for _, v := range values {
			if _, dup := set[v]; !dup {
				set[v] = struct{}{}
				grew = true
			}
		}
	}

	if grew {
		st.lastEvidenceTurn = st.turnCount
		log.Printf("[store] session %s gained intelligence at turn %d", id, st.turnCount)
	}
	return grew
}

// EvaluateTermination applies the three end-of-conversation rules in
// fixed priority order and flips the session inactive on the first
// match. An ended session stays ended: later calls keep returning true
// no matter what the counters say.
func (s *Store) EvaluateTermination(id string, limits model.Limits) bool {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.sessions[id]
	if !ok {
		log.Printf("[store] termination check for unknown session %s, ending", id)
		return true
	}

	if !st.active {
		return true
	}

	// Rule 1: turn budget exhausted.
	if st.turnCount >= limits.MaxTurns {
		st.active = false
		log.Printf("[store] session %s ending: max turns (%d) reached", id, limits.MaxTurns)
		return true
	}

	// Rule 2: enough distinct categories collected. The turn guard keeps
	// a conversation from ending on its very first exchange.
	categoriesFound := 0
	for _, set := range st.evidence {
		if len(set) > 0 {
			categoriesFound++
		}
	}
	if categoriesFound >= limits.MinCategories && st.turnCount > 1 {
		st.active = false
		log.Printf("[store] session %s ending: %d intelligence categories gathered", id, categoriesFound)
		return true
	}

	// Rule 3: conversation has gone stale.
	if st.turnCount-st.lastEvidenceTurn >= limits.StaleTurns && st.turnCount > 0 {
		st.active = false
		log.Printf("[store] session %s ending: no new intelligence in %d turns", id, limits.StaleTurns)
		return true
	}

	return false
}

// Snapshot returns an immutable copy of the session with evidence sets
// rendered as sorted lists.
func (s *Store) Snapshot(id string) (model.Summary, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.sessions[id]
	if !ok {
		return model.Summary{}, ErrSessionNotFound
	}
	return snapshotLocked(st), nil
}

func snapshotLocked(st *state) model.Summary {
	intelligence := make(model.Intelligence, len(st.evidence))
	for cat, set := range st.evidence {
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		intelligence[cat] = values
	}

	history := make([]model.Message, len(st.history))
	copy(history, st.history)

	return model.Summary{
		SessionID:             st.id,
		TurnCount:             st.turnCount,
		ScamDetected:          st.scamDetected,
		PersonaUsed:           st.persona,
		ExtractedIntelligence: intelligence,
		ConversationActive:    st.active,
		LastIntelligenceTurn:  st.lastEvidenceTurn,
		CreatedAt:             st.createdAt,
		ConversationHistory:   history,
	}
}

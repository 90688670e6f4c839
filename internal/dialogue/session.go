// Package dialogue implements the stateful multi-turn conversation manager
// that turns transcripts into validated ledger directives. Each turn applies
// a fixed precedence of rules — disambiguation replies, composite clauses,
// acknowledgements, settlement intent, full-sentence parsing, partial slot
// merging — against one ConversationSession and emits exactly one response.
package dialogue

import "github.com/tallyvox/tallyvox/pkg/money"

// Slot identifies which command slot a disambiguation is resolving.
type Slot string

const (
	SlotDebtor       Slot = "debtor"
	SlotCreditor     Slot = "creditor"
	SlotSettleTarget Slot = "settle-target"
)

// Draft is an in-progress bill command. It is complete once creditor,
// debtor, and amount are all present; the note stays optional.
type Draft struct {
	Creditor  string
	Debtor    string
	Amount    money.Amount
	HasAmount bool
	Note      string
}

// Complete reports whether all three required slots are filled.
func (d Draft) Complete() bool {
	return d.Creditor != "" && d.Debtor != "" && d.HasAmount
}

// PendingDisambiguation is a paused turn awaiting the user's choice among
// ranked name candidates. Candidates is non-empty by construction.
type PendingDisambiguation struct {
	// Draft carries the in-flight command when the ambiguous name belongs
	// to a bill slot. Nil for settle targets.
	Draft *Draft

	// Slot names the command slot being resolved.
	Slot Slot

	// RawName is the unresolved name as spoken.
	RawName string

	// Candidates holds 1–3 ranked contact names.
	Candidates []string
}

// Session owns all mutable conversation state for one logical conversation.
// A Session must only be used by one goroutine at a time; callers serialise
// turns per conversation. Create one with [NewSession] and pass it to every
// [Manager.HandleUtterance] call for that conversation.
type Session struct {
	draft   *Draft
	pending *PendingDisambiguation

	// clarifyTurns counts consecutive slot-filling questions, bounded to
	// [0, maxClarifyTurns]. Disambiguation replies do not touch it.
	clarifyTurns int

	// lastCounterparty remembers the most recent non-"me" participant for
	// pronoun resolution across turns.
	lastCounterparty string
}

// NewSession returns an empty conversation session.
func NewSession() *Session {
	return &Session{}
}

// Reset clears every piece of per-conversation state, including the
// last-mentioned-counterparty memo.
func (s *Session) Reset() {
	s.draft = nil
	s.pending = nil
	s.clarifyTurns = 0
	s.lastCounterparty = ""
}

// clearProgress drops the in-flight draft, pending disambiguation, and
// clarification counter but keeps the pronoun memo. Used after a successful
// finalize, where "her" in the next utterance should still resolve.
func (s *Session) clearProgress() {
	s.draft = nil
	s.pending = nil
	s.clarifyTurns = 0
}

// LastCounterparty exposes the pronoun memo for inspection in logs/tests.
func (s *Session) LastCounterparty() string {
	return s.lastCounterparty
}

package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tallyvox/tallyvox/internal/contacts"
	"github.com/tallyvox/tallyvox/internal/ledger"
	"github.com/tallyvox/tallyvox/internal/nlu"
	"github.com/tallyvox/tallyvox/internal/observe"
	"github.com/tallyvox/tallyvox/internal/resolve"
	"github.com/tallyvox/tallyvox/pkg/money"
)

// defaultMaxClarifyTurns bounds consecutive slot-filling questions before
// the conversation is reset.
const defaultMaxClarifyTurns = 3

// Fixed prompt texts.
const (
	questionDebtor   = "Who owes the money?"
	questionCreditor = "Who is the money owed to?"
	questionAmount   = "How much is it?"
	genericPrompt    = "Tell me who owes whom and how much, for example: Alice owes me 20 for lunch."
	restartMessage   = "Let's start over. Try something like: Alice owes me 20 for lunch."
	allSettled       = "You're all settled up."
)

// ackWords are bare acknowledgements that carry no slot content.
var ackWords = map[string]struct{}{
	"ok": {}, "okay": {}, "sure": {}, "got it": {}, "yes": {}, "yeah": {},
	"yep": {}, "alright": {}, "fine": {}, "right": {}, "cool": {},
}

// Config configures a [Manager].
type Config struct {
	// Router is the two-tier parsing pipeline. Required.
	Router *nlu.Router

	// Directory supplies known contact names. Required; use an empty
	// static directory to permit free-form names.
	Directory contacts.Directory

	// Store answers open-balance queries for settlement. Required.
	Store ledger.Store

	// Corrector optionally rewrites misheard contact names before parsing.
	Corrector *resolve.Corrector

	// MaxClarifyTurns bounds consecutive slot-filling questions.
	// Defaults to 3 when zero or negative.
	MaxClarifyTurns int

	// Metrics records dialogue outcomes. Nil uses [observe.DefaultMetrics].
	Metrics *observe.Metrics
}

// Manager interprets one utterance at a time against a [Session] and emits
// exactly one [Response] per turn. The Manager itself is stateless across
// sessions and safe for concurrent use with distinct sessions; all calls
// for one session must be serialised by the caller.
type Manager struct {
	router    *nlu.Router
	directory contacts.Directory
	store     ledger.Store
	corrector *resolve.Corrector
	maxTurns  int
	metrics   *observe.Metrics
}

// NewManager constructs a Manager from cfg.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Router == nil {
		return nil, errors.New("dialogue: config.Router is required")
	}
	if cfg.Directory == nil {
		return nil, errors.New("dialogue: config.Directory is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("dialogue: config.Store is required")
	}
	if cfg.MaxClarifyTurns <= 0 {
		cfg.MaxClarifyTurns = defaultMaxClarifyTurns
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	return &Manager{
		router:    cfg.Router,
		directory: cfg.Directory,
		store:     cfg.Store,
		corrector: cfg.Corrector,
		maxTurns:  cfg.MaxClarifyTurns,
		metrics:   cfg.Metrics,
	}, nil
}

// HandleUtterance interprets one transcript for the given session and
// returns the single response for this turn. Errors are only returned for
// collaborator failures (directory or ledger access); malformed input
// always degrades to a clarifying question.
func (m *Manager) HandleUtterance(ctx context.Context, sess *Session, transcript string) (Response, error) {
	if sess == nil {
		return Response{}, errors.New("dialogue: session must not be nil")
	}

	ctx, span := observe.StartSpan(ctx, "dialogue.HandleUtterance")
	defer span.End()

	resp, err := m.handleTurn(ctx, sess, transcript)
	if err != nil {
		return Response{}, err
	}
	m.metrics.RecordUtterance(string(resp.Kind))
	observe.Logger(ctx).Debug("dialogue: turn handled",
		"response", resp.Kind,
		"clarify_turns", sess.clarifyTurns,
	)
	return resp, nil
}

// handleTurn applies the per-utterance precedence rules in fixed order.
func (m *Manager) handleTurn(ctx context.Context, sess *Session, transcript string) (Response, error) {
	names, err := m.directory.Names(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("dialogue: list contacts: %w", err)
	}

	text := transcript
	if m.corrector != nil {
		text = m.corrector.Correct(text, names)
	}
	norm := nlu.Normalize(text)

	// 1. A pending disambiguation consumes the reply before anything else.
	if sess.pending != nil {
		return m.handleDisambiguationReply(ctx, sess, norm, names)
	}

	if norm == "" {
		return m.askSlot(sess, m.missingSlotQuestion(sess.draft)), nil
	}

	// 2. Composite multi-clause extraction and consensus summaries.
	clauses := nlu.ExtractBalances(norm)
	if len(clauses) >= 2 || (len(clauses) == 1 && wantsSummary(norm)) {
		return m.summarize(sess, clauses), nil
	}

	// 3. Bare acknowledgements just advance slot filling.
	if _, ack := ackWords[norm]; ack {
		return m.askSlot(sess, m.missingSlotQuestion(sess.draft)), nil
	}

	// 4. Settlement intent.
	if target, ok := settleIntent(norm); ok {
		return m.handleSettle(ctx, sess, target, names)
	}

	// 5. Full-sentence parse through the routing pipeline.
	if cmd, routeErr := m.router.Route(norm); routeErr == nil {
		if validCommand(cmd) {
			draft := &Draft{
				Creditor:  cmd.Creditor,
				Debtor:    cmd.Debtor,
				Amount:    cmd.Amount,
				HasAmount: true,
				Note:      cmd.Note,
			}
			return m.resolveAndFinalize(ctx, sess, draft, &cmd.Decision, transcript, names)
		}
		// Validation failures are treated as "not a command" and fall
		// through to partial slot extraction.
	}

	// 6. Partial slot merge.
	return m.mergePartial(ctx, sess, norm, transcript, names)
}

// mergePartial extracts whatever the utterance holds (an amount or a single
// bare person name), merges it into the running draft, and either finalizes
// or asks for the next missing slot.
func (m *Manager) mergePartial(ctx context.Context, sess *Session, norm, transcript string, names []string) (Response, error) {
	draft := sess.draft
	if draft == nil {
		draft = &Draft{}
	}

	merged := false
	if !draft.HasAmount {
		// Only positive amounts are merged: a zero can never survive final
		// validation, so merging it would wedge the draft.
		if amt, ok := nlu.ParseFlexibleAmount(norm); ok && amt.IsPositive() {
			draft.Amount = amt
			draft.HasAmount = true
			merged = true
		}
	}
	if !merged && nlu.PlausibleName(norm) {
		switch {
		case draft.Debtor == "":
			draft.Debtor = norm
			merged = true
		case draft.Creditor == "":
			draft.Creditor = norm
			merged = true
		}
	}

	if !merged {
		return m.askSlot(sess, m.missingSlotQuestion(sess.draft)), nil
	}

	sess.draft = draft
	if draft.Complete() {
		return m.resolveAndFinalize(ctx, sess, draft, nil, transcript, names)
	}
	return m.askSlot(sess, m.missingSlotQuestion(draft)), nil
}

// resolveAndFinalize resolves both names of a complete draft against the
// directory and finalizes the command. An ambiguous name pauses the turn
// with a disambiguation question; an unknown name clears the slot and asks
// again. decision may be nil for drafts assembled by slot filling.
func (m *Manager) resolveAndFinalize(ctx context.Context, sess *Session, draft *Draft, decision *nlu.RouteDecision, transcript string, names []string) (Response, error) {
	slots := []struct {
		slot Slot
		get  func() string
		set  func(string)
	}{
		{SlotDebtor, func() string { return draft.Debtor }, func(v string) { draft.Debtor = v }},
		{SlotCreditor, func() string { return draft.Creditor }, func(v string) { draft.Creditor = v }},
	}

	for _, s := range slots {
		raw := s.get()
		res := resolve.ResolveName(raw, names, sess.lastCounterparty)
		switch res.Kind {
		case resolve.Resolved:
			s.set(res.Name)
		case resolve.Ambiguous:
			sess.draft = nil
			sess.pending = &PendingDisambiguation{
				Draft:      draft,
				Slot:       s.slot,
				RawName:    raw,
				Candidates: res.Candidates,
			}
			return ask(disambiguationQuestion(s.slot, res.Candidates)), nil
		case resolve.NotFound:
			s.set("")
			sess.draft = draft
			q := fmt.Sprintf("I don't have a contact named %s. %s",
				resolve.NormalizeName(raw, sess.lastCounterparty), slotQuestion(s.slot))
			return m.askSlot(sess, q), nil
		}
	}

	if strings.EqualFold(draft.Creditor, draft.Debtor) {
		both := draft.Creditor
		draft.Debtor = ""
		sess.draft = draft
		q := fmt.Sprintf("%s can't owe themselves. %s", both, questionDebtor)
		return m.askSlot(sess, q), nil
	}

	dec := nlu.RouteDecision{
		Route:      nlu.RouteOnDevice,
		Reasons:    []string{nlu.ReasonSlotFilled},
		Complexity: nlu.ComplexityScore(transcript),
	}
	if decision != nil {
		dec = *decision
	}

	cmd := nlu.ParsedCommand{
		Creditor:   draft.Creditor,
		Debtor:     draft.Debtor,
		Amount:     draft.Amount,
		Note:       draft.Note,
		Decision:   dec,
		Transcript: transcript,
	}

	memo := cmd.Debtor
	if memo == ledger.Me {
		memo = cmd.Creditor
	}
	sess.clearProgress()
	if memo != ledger.Me {
		sess.lastCounterparty = memo
	}

	slog.Info("dialogue: command finalized",
		"creditor", cmd.Creditor,
		"debtor", cmd.Debtor,
		"amount", cmd.Amount.String(),
		"route", cmd.Decision.Route,
	)
	return added(cmd, "Recorded: "+describeDebt(cmd.Debtor, cmd.Creditor, cmd.Amount, cmd.Note)), nil
}

// askSlot emits a clarifying question, enforcing the clarification cap:
// exceeding it resets the session and emits the restart prompt instead.
func (m *Manager) askSlot(sess *Session, question string) Response {
	sess.clarifyTurns++
	m.metrics.AddClarificationTurn()
	if sess.clarifyTurns > m.maxTurns {
		sess.Reset()
		m.metrics.AddSessionReset()
		slog.Info("dialogue: clarification cap exceeded, session reset")
		return info(restartMessage)
	}
	return ask(question)
}

// missingSlotQuestion picks the highest-priority missing slot of the draft,
// in fixed order amount > debtor > creditor.
func (m *Manager) missingSlotQuestion(draft *Draft) string {
	if draft == nil {
		return genericPrompt
	}
	switch {
	case !draft.HasAmount:
		return questionAmount
	case draft.Debtor == "":
		return questionDebtor
	case draft.Creditor == "":
		return questionCreditor
	}
	return genericPrompt
}

func slotQuestion(slot Slot) string {
	switch slot {
	case SlotCreditor:
		return questionCreditor
	default:
		return questionDebtor
	}
}

// validCommand applies the post-parse validation: positive amount, both
// names plausible (or the user), distinct parties.
func validCommand(cmd nlu.ParsedCommand) bool {
	if !cmd.Amount.IsPositive() {
		return false
	}
	if !nameOrMe(cmd.Creditor) || !nameOrMe(cmd.Debtor) {
		return false
	}
	return !strings.EqualFold(cmd.Creditor, cmd.Debtor)
}

func nameOrMe(name string) bool {
	return strings.EqualFold(name, ledger.Me) || nlu.PlausibleName(name)
}

// describeDebt renders "<debtor> owes <creditor> $X.XX[ for <note>]" with
// "you" substituted for the user's side.
func describeDebt(debtor, creditor string, amount money.Amount, note string) string {
	var sb strings.Builder
	if debtor == ledger.Me {
		sb.WriteString("You owe ")
		sb.WriteString(creditor)
	} else if creditor == ledger.Me {
		sb.WriteString(debtor)
		sb.WriteString(" owes you")
	} else {
		sb.WriteString(debtor)
		sb.WriteString(" owes ")
		sb.WriteString(creditor)
	}
	sb.WriteString(" ")
	sb.WriteString(amount.String())
	if note != "" {
		sb.WriteString(" for ")
		sb.WriteString(note)
	}
	sb.WriteString(".")
	return sb.String()
}

package dialogue

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// confirmWords accept a single-candidate "Did you mean X?" question.
var confirmWords = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "sure": {}, "correct": {},
	"right": {}, "that's right": {}, "exactly": {},
}

var ordinalWords = map[string]int{
	"one": 1, "two": 2, "three": 3,
	"first": 1, "second": 2, "third": 3,
}

// handleDisambiguationReply resolves the user's reply against the pending
// candidate list. Unresolvable replies re-ask the same question without
// consuming a clarification turn.
func (m *Manager) handleDisambiguationReply(ctx context.Context, sess *Session, norm string, names []string) (Response, error) {
	p := sess.pending
	choice, ok := matchCandidate(norm, p.Candidates)
	if !ok {
		return ask(disambiguationQuestion(p.Slot, p.Candidates)), nil
	}

	sess.pending = nil
	m.metrics.AddDisambiguationRound()

	if p.Slot == SlotSettleTarget {
		return m.settleResolved(ctx, sess, choice)
	}

	draft := p.Draft
	if draft == nil {
		draft = &Draft{}
	}
	switch p.Slot {
	case SlotCreditor:
		draft.Creditor = choice
	default:
		draft.Debtor = choice
	}
	sess.draft = draft

	if draft.Complete() {
		return m.resolveAndFinalize(ctx, sess, draft, nil, norm, names)
	}
	return m.askSlot(sess, m.missingSlotQuestion(draft)), nil
}

// matchCandidate interprets a disambiguation reply as a 1-based index, an
// exact candidate name, a substring unique to one candidate, or a bare
// confirmation when only one candidate was offered.
func matchCandidate(reply string, candidates []string) (string, bool) {
	if reply == "" || len(candidates) == 0 {
		return "", false
	}

	if n, err := strconv.Atoi(reply); err == nil && n >= 1 && n <= len(candidates) {
		return candidates[n-1], true
	}
	if n, ok := ordinalWords[reply]; ok && n <= len(candidates) {
		return candidates[n-1], true
	}

	for _, c := range candidates {
		if strings.EqualFold(c, reply) {
			return c, true
		}
	}

	var hit string
	hits := 0
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if strings.Contains(lc, reply) || strings.Contains(reply, lc) {
			hit = c
			hits++
		}
	}
	if hits == 1 {
		return hit, true
	}

	if len(candidates) == 1 {
		if _, ok := confirmWords[reply]; ok {
			return candidates[0], true
		}
	}
	return "", false
}

// disambiguationQuestion renders the question for a candidate list: a
// yes/no form for one candidate, a numbered list otherwise.
func disambiguationQuestion(slot Slot, candidates []string) string {
	if len(candidates) == 1 {
		return fmt.Sprintf("Did you mean %s?", candidates[0])
	}
	noun := "debtor"
	switch slot {
	case SlotCreditor:
		noun = "creditor"
	case SlotSettleTarget:
		noun = "name"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Which %s did you mean:", noun)
	for i, c := range candidates {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, " %d) %s", i+1, c)
	}
	sb.WriteString("?")
	return sb.String()
}

package dialogue

import "github.com/tallyvox/tallyvox/internal/nlu"

// ResponseKind tags the single response emitted per turn.
type ResponseKind string

const (
	// KindAdded means a command was finalized; Command and Message are set.
	KindAdded ResponseKind = "added"

	// KindAsk is a clarifying question; Question is set.
	KindAsk ResponseKind = "ask"

	// KindInfo is an informational message with no ledger mutation.
	KindInfo ResponseKind = "info"

	// KindSettle asks the caller to settle with SettleTarget.
	KindSettle ResponseKind = "settle"
)

// Response is the one tagged output of a dialogue turn.
type Response struct {
	Kind ResponseKind

	// Command is the validated, fully resolved directive for KindAdded.
	Command *nlu.ParsedCommand

	// Message accompanies KindAdded and KindInfo.
	Message string

	// Question is the prompt for KindAsk.
	Question string

	// SettleTarget names the counterparty to settle with for KindSettle.
	SettleTarget string
}

func added(cmd nlu.ParsedCommand, message string) Response {
	return Response{Kind: KindAdded, Command: &cmd, Message: message}
}

func ask(question string) Response {
	return Response{Kind: KindAsk, Question: question}
}

func info(message string) Response {
	return Response{Kind: KindInfo, Message: message}
}

func settle(target string) Response {
	return Response{Kind: KindSettle, SettleTarget: target}
}

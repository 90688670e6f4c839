package nlu

import "github.com/tallyvox/tallyvox/pkg/money"

// Route identifies which grammar tier produced a successful parse.
type Route string

const (
	// RouteOnDevice means the strict grammar matched.
	RouteOnDevice Route = "on_device"

	// RouteCloudFallback means the strict grammar failed and the permissive
	// grammar matched after the fallback gate fired.
	RouteCloudFallback Route = "cloud_fallback"
)

// Reason tags recorded on a RouteDecision, in the order they were
// established.
const (
	ReasonOnDeviceSuccess      = "on_device_success"
	ReasonLowComplexity        = "low_complexity"
	ReasonComplexButLocal      = "complex_but_local_success"
	ReasonOnDeviceParseFailed  = "on_device_parse_failed"
	ReasonComplexityTriggered  = "complexity_triggered"
	ReasonCloudFallbackSuccess = "cloud_fallback_success"
	ReasonFallbackNotTriggered = "fallback_not_triggered"
	ReasonSlotFilled           = "slot_filled"
)

// RouteDecision records how the routing pipeline handled a transcript.
type RouteDecision struct {
	// Route is the tier that produced the parse.
	Route Route

	// Reasons are ordered tags explaining the decision.
	Reasons []string

	// Complexity is the non-negative complexity score of the transcript.
	Complexity int
}

// ParsedCommand is a fully extracted ledger mutation directive. Creditor and
// debtor are raw (unresolved) names; "me" denotes the speaking user. The
// creditor and debtor always differ case-insensitively once validated.
type ParsedCommand struct {
	Creditor   string
	Debtor     string
	Amount     money.Amount
	Note       string
	Decision   RouteDecision
	Transcript string
}

// BalanceCommand is a single extracted debt clause used by composite and
// consensus parsing. It is never persisted directly.
type BalanceCommand struct {
	Creditor string
	Debtor   string
	Amount   money.Amount
}

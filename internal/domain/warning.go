package domain

// Warning is a non-fatal condition surfaced in result structs.
// Warnings never travel through the error path.
type Warning string

// Warnings.
const (
	// WarningNoRecipients means a segment filter matched zero profiles.
	WarningNoRecipients Warning = "NO_RECIPIENTS"

	// WarningPartialDelivery means at least one push delivery failed after
	// the announcement itself was committed.
	WarningPartialDelivery Warning = "PARTIAL_DELIVERY"
)

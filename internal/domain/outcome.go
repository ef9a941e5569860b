package domain

// Outcome describes how a reaction event was resolved.
type Outcome int

const (
	OutcomeIgnored           Outcome = iota // Unknown symbol
	OutcomeSelfReaction                     // Actor reacted to their own message
	OutcomeSenderUnlinked                   // Actor has no linked account
	OutcomeEscrowed                         // Recipient unlinked, claim stored
	OutcomeInsufficientFunds                // Ledger rejected for funds
	OutcomeTransferFailed                   // Ledger failed for any other reason
	OutcomeTransferred                      // Kudos moved
	OutcomeLookupFailed                     // Account directory unavailable
	OutcomeEscrowFailed                     // Escrow store unavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeSelfReaction:
		return "self_reaction"
	case OutcomeSenderUnlinked:
		return "sender_unlinked"
	case OutcomeEscrowed:
		return "escrowed"
	case OutcomeInsufficientFunds:
		return "insufficient_funds"
	case OutcomeTransferFailed:
		return "transfer_failed"
	case OutcomeTransferred:
		return "transferred"
	case OutcomeLookupFailed:
		return "lookup_failed"
	case OutcomeEscrowFailed:
		return "escrow_failed"
	default:
		return "unknown"
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"github.com/jonboulle/clockwork"
)

// EngineDeps bundles the collaborators of the transfer engine.
// Activity may be nil when no activity stream is configured.
type EngineDeps struct {
	Classifier *Classifier
	Accounts   domain.AccountRepository
	Escrow     domain.EscrowRepository
	Ledger     domain.Ledger
	Notifier   domain.Notifier
	Retractor  domain.ReactionRetractor
	Activity   domain.ActivityPublisher
	Messages   *Messages
	Clock      clockwork.Clock
}

// Engine turns qualifying reactions into ledger transfers or escrow claims.
//
// Concurrent invocations are not coordinated with each other. Two reactions
// from the same sender may race; the ledger's own accounting is the only
// guard against overspending.
type Engine struct {
	classifier *Classifier
	accounts   domain.AccountRepository
	escrow     domain.EscrowRepository
	ledger     domain.Ledger
	notifier   domain.Notifier
	retractor  domain.ReactionRetractor
	activity   domain.ActivityPublisher
	messages   *Messages
	clock      clockwork.Clock
}

func NewEngine(deps EngineDeps) *Engine {
	return &Engine{
		classifier: deps.Classifier,
		accounts:   deps.Accounts,
		escrow:     deps.Escrow,
		ledger:     deps.Ledger,
		notifier:   deps.Notifier,
		retractor:  deps.Retractor,
		activity:   deps.Activity,
		messages:   deps.Messages,
		clock:      deps.Clock,
	}
}

// HandleReaction runs one reaction event to a terminal outcome. The returned
// error is set only for infrastructure failures, which callers should log; it
// is never shown to members.
func (e *Engine) HandleReaction(ctx context.Context, ev domain.ReactionEvent) (domain.Outcome, error) {
	rule, class := e.classifier.Classify(ev.Symbol, ev.ActorID, ev.AuthorID)
	switch class {
	case ClassIgnored:
		return domain.OutcomeIgnored, nil
	case ClassSelfReaction:
		e.retract(ctx, ev.Ref)
		return domain.OutcomeSelfReaction, nil
	}

	sender, err := e.findAccount(ctx, ev.ActorID)
	if err != nil {
		return domain.OutcomeLookupFailed, fmt.Errorf("sender lookup failed: %w", err)
	}
	recipient, err := e.findAccount(ctx, ev.AuthorID)
	if err != nil {
		return domain.OutcomeLookupFailed, fmt.Errorf("recipient lookup failed: %w", err)
	}

	if sender == nil {
		e.notifier.Notify(ctx, ev.ActorID, domain.Notification{Content: msgNotLoggedIn})
		e.retract(ctx, ev.Ref)
		return domain.OutcomeSenderUnlinked, nil
	}

	if recipient == nil {
		return e.escrowClaim(ctx, ev)
	}

	return e.transfer(ctx, ev, rule, sender, recipient)
}

func (e *Engine) transfer(ctx context.Context, ev domain.ReactionEvent, rule domain.ReactionRule, sender, recipient *domain.Account) (domain.Outcome, error) {
	sendGateOpen := thresholdAllows(sender.Notifications.Send, rule.Value)
	receiveGateOpen := thresholdAllows(recipient.Notifications.Receive, rule.Value)

	err := e.ledger.Transfer(ctx, sender.LedgerCredential, recipient.LedgerUsername, rule.Value)
	if errors.Is(err, domain.ErrInsufficientFunds) {
		e.notifier.Notify(ctx, ev.ActorID, domain.Notification{Content: msgInsufficientFunds})
		return domain.OutcomeInsufficientFunds, nil
	}
	if err != nil {
		return domain.OutcomeTransferFailed, fmt.Errorf("ledger transfer failed: %w", err)
	}

	if sendGateOpen {
		e.notifier.Notify(ctx, ev.ActorID, domain.Notification{Content: e.messages.Sent(ev.AuthorID, rule.Value)})
	}

	if receiveGateOpen {
		content, err := e.messages.Received(rule.Message, rule.Value, ev.ActorID, ev.MessageURL)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to render receive message", "symbol", rule.Symbol, "error", err)
		} else {
			e.notifier.Notify(ctx, ev.AuthorID, domain.Notification{Content: content, Embed: true})
		}
	}

	// The transfer already happened on the ledger; bookkeeping failures are
	// logged and never undo it.
	if err := e.accounts.RecordDonation(ctx, ev.ActorID, rule.Value); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			slog.WarnContext(ctx, "Donation not recorded: sender account vanished", "from", ev.ActorID, "amount", rule.Value)
		} else {
			slog.ErrorContext(ctx, "Failed to record donation", "from", ev.ActorID, "amount", rule.Value, "error", err)
		}
	}

	if e.activity != nil {
		event := domain.TransferEvent{
			FromPlatformID:   ev.ActorID,
			ToPlatformID:     ev.AuthorID,
			ReactionSymbol:   ev.Symbol,
			Amount:           rule.Value,
			SourceMessageURL: ev.MessageURL,
			OccurredAt:       e.clock.Now(),
		}
		if err := e.activity.PublishTransfer(ctx, event); err != nil {
			slog.WarnContext(ctx, "Failed to publish transfer activity", "error", err)
		}
	}

	slog.InfoContext(ctx, "Kudos transferred", "from", ev.ActorID, "to", ev.AuthorID, "amount", rule.Value)
	return domain.OutcomeTransferred, nil
}

func (e *Engine) escrowClaim(ctx context.Context, ev domain.ReactionEvent) (domain.Outcome, error) {
	claim := domain.EscrowClaim{
		ID:               uuid.New(),
		FromPlatformID:   ev.ActorID,
		ToPlatformID:     ev.AuthorID,
		ReactionSymbol:   ev.Symbol,
		SourceMessageURL: ev.MessageURL,
		CreatedAt:        e.clock.Now(),
	}

	if err := e.escrow.Enqueue(ctx, claim); err != nil {
		return domain.OutcomeEscrowFailed, fmt.Errorf("escrow enqueue failed: %w", err)
	}

	e.notifier.Notify(ctx, ev.AuthorID, domain.Notification{Content: e.messages.EscrowRecipient()})
	e.notifier.Notify(ctx, ev.ActorID, domain.Notification{Content: e.messages.EscrowSender(ev.AuthorID)})

	if e.activity != nil {
		if err := e.activity.PublishEscrow(ctx, claim); err != nil {
			slog.WarnContext(ctx, "Failed to publish escrow activity", "error", err)
		}
	}

	slog.InfoContext(ctx, "Kudos escrowed for unlinked recipient", "claim_id", claim.ID.String(), "from", ev.ActorID, "to", ev.AuthorID)
	return domain.OutcomeEscrowed, nil
}

// findAccount maps ErrAccountNotFound to (nil, nil).
func (e *Engine) findAccount(ctx context.Context, platformID string) (*domain.Account, error) {
	account, err := e.accounts.Get(ctx, platformID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (e *Engine) retract(ctx context.Context, ref domain.ReactionRef) {
	if err := e.retractor.RetractReaction(ctx, ref); err != nil {
		slog.WarnContext(ctx, "Failed to retract reaction", "message_id", ref.MessageID, "user", ref.UserID, "error", err)
	}
}

// thresholdAllows reports whether a reaction of the given value clears a
// member's notification threshold.
func thresholdAllows(threshold *int, value int) bool {
	if threshold == nil {
		return true
	}
	if *threshold == domain.NotificationsDisabled {
		return false
	}
	return *threshold <= value
}

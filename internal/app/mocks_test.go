package app

import (
	"context"

	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
)

// --- Mock AccountRepository ---

type mockAccountRepo struct {
	getFn                       func(ctx context.Context, platformID string) (*domain.Account, error)
	linkFn                      func(ctx context.Context, platformID, credential, username string) (bool, error)
	recordDonationFn            func(ctx context.Context, platformID string, amount int) error
	setNotificationThresholdsFn func(ctx context.Context, platformID string, thresholds domain.NotificationThresholds) error
}

func (m *mockAccountRepo) Get(ctx context.Context, platformID string) (*domain.Account, error) {
	if m.getFn != nil {
		return m.getFn(ctx, platformID)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *mockAccountRepo) Link(ctx context.Context, platformID, credential, username string) (bool, error) {
	if m.linkFn != nil {
		return m.linkFn(ctx, platformID, credential, username)
	}
	return true, nil
}

func (m *mockAccountRepo) RecordDonation(ctx context.Context, platformID string, amount int) error {
	if m.recordDonationFn != nil {
		return m.recordDonationFn(ctx, platformID, amount)
	}
	return nil
}

func (m *mockAccountRepo) SetNotificationThresholds(ctx context.Context, platformID string, thresholds domain.NotificationThresholds) error {
	if m.setNotificationThresholdsFn != nil {
		return m.setNotificationThresholdsFn(ctx, platformID, thresholds)
	}
	return nil
}

// --- Mock EscrowRepository ---

type mockEscrowRepo struct {
	enqueueFn     func(ctx context.Context, claim domain.EscrowClaim) error
	listPendingFn func(ctx context.Context, toPlatformID string) ([]domain.EscrowClaim, error)
}

func (m *mockEscrowRepo) Enqueue(ctx context.Context, claim domain.EscrowClaim) error {
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, claim)
	}
	return nil
}

func (m *mockEscrowRepo) ListPending(ctx context.Context, toPlatformID string) ([]domain.EscrowClaim, error) {
	if m.listPendingFn != nil {
		return m.listPendingFn(ctx, toPlatformID)
	}
	return nil, nil
}

// --- Mock Ledger ---

type mockLedger struct {
	lookupAccountFn func(ctx context.Context, credential string) (string, error)
	transferFn      func(ctx context.Context, credential, toUsername string, amount int) error
}

func (m *mockLedger) LookupAccount(ctx context.Context, credential string) (string, error) {
	if m.lookupAccountFn != nil {
		return m.lookupAccountFn(ctx, credential)
	}
	return "", domain.ErrLedgerAccountNotFound
}

func (m *mockLedger) Transfer(ctx context.Context, credential, toUsername string, amount int) error {
	if m.transferFn != nil {
		return m.transferFn(ctx, credential, toUsername, amount)
	}
	return nil
}

// --- Recording Notifier ---

type sentNotification struct {
	to string
	n  domain.Notification
}

type recordingNotifier struct {
	sent []sentNotification
}

func (r *recordingNotifier) Notify(_ context.Context, platformID string, n domain.Notification) {
	r.sent = append(r.sent, sentNotification{to: platformID, n: n})
}

func (r *recordingNotifier) to(platformID string) []domain.Notification {
	var out []domain.Notification
	for _, s := range r.sent {
		if s.to == platformID {
			out = append(out, s.n)
		}
	}
	return out
}

// --- Mock ReactionRetractor ---

type mockRetractor struct {
	retracted []domain.ReactionRef
	err       error
}

func (m *mockRetractor) RetractReaction(_ context.Context, ref domain.ReactionRef) error {
	m.retracted = append(m.retracted, ref)
	return m.err
}

// --- Mock ActivityPublisher ---

type mockActivity struct {
	transfers []domain.TransferEvent
	escrows   []domain.EscrowClaim
	err       error
}

func (m *mockActivity) PublishTransfer(_ context.Context, event domain.TransferEvent) error {
	m.transfers = append(m.transfers, event)
	return m.err
}

func (m *mockActivity) PublishEscrow(_ context.Context, claim domain.EscrowClaim) error {
	m.escrows = append(m.escrows, claim)
	return m.err
}

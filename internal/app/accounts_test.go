package app

import (
	"context"
	"errors"
	"testing"

	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink_Created(t *testing.T) {
	var linkedID, linkedCred, linkedUser string
	accounts := &mockAccountRepo{
		linkFn: func(_ context.Context, platformID, credential, username string) (bool, error) {
			linkedID, linkedCred, linkedUser = platformID, credential, username
			return true, nil
		},
	}
	ledger := &mockLedger{
		lookupAccountFn: func(_ context.Context, credential string) (string, error) {
			assert.Equal(t, "key-1", credential)
			return "bee", nil
		},
	}
	svc := NewAccountService(accounts, &mockEscrowRepo{}, ledger)

	result, err := svc.Link(context.Background(), "200", "key-1")

	require.NoError(t, err)
	assert.Equal(t, LinkCreated, result)
	assert.Equal(t, "200", linkedID)
	assert.Equal(t, "key-1", linkedCred)
	assert.Equal(t, "bee", linkedUser)
}

func TestLink_Updated(t *testing.T) {
	accounts := &mockAccountRepo{
		linkFn: func(_ context.Context, _, _, _ string) (bool, error) {
			return false, nil
		},
	}
	ledger := &mockLedger{
		lookupAccountFn: func(_ context.Context, _ string) (string, error) {
			return "bee", nil
		},
	}
	svc := NewAccountService(accounts, &mockEscrowRepo{}, ledger)

	result, err := svc.Link(context.Background(), "200", "key-2")

	require.NoError(t, err)
	assert.Equal(t, LinkUpdated, result)
}

func TestLink_InvalidCredential(t *testing.T) {
	accounts := &mockAccountRepo{
		linkFn: func(_ context.Context, _, _, _ string) (bool, error) {
			t.Fatal("must not link an unverified credential")
			return false, nil
		},
	}
	svc := NewAccountService(accounts, &mockEscrowRepo{}, &mockLedger{})

	_, err := svc.Link(context.Background(), "200", "bogus")

	assert.ErrorIs(t, err, domain.ErrLedgerAccountNotFound)
}

func TestLink_LedgerUnavailable(t *testing.T) {
	ledger := &mockLedger{
		lookupAccountFn: func(_ context.Context, _ string) (string, error) {
			return "", domain.ErrLedgerUnavailable
		},
	}
	svc := NewAccountService(&mockAccountRepo{}, &mockEscrowRepo{}, ledger)

	_, err := svc.Link(context.Background(), "200", "key")

	assert.ErrorIs(t, err, domain.ErrLedgerUnavailable)
	assert.NotErrorIs(t, err, domain.ErrLedgerAccountNotFound)
}

func TestLink_RepositoryError(t *testing.T) {
	accounts := &mockAccountRepo{
		linkFn: func(_ context.Context, _, _, _ string) (bool, error) {
			return false, errors.New("db down")
		},
	}
	ledger := &mockLedger{
		lookupAccountFn: func(_ context.Context, _ string) (string, error) {
			return "bee", nil
		},
	}
	svc := NewAccountService(accounts, &mockEscrowRepo{}, ledger)

	_, err := svc.Link(context.Background(), "200", "key")

	assert.Error(t, err)
}

func TestLink_PendingClaimsAreNotConsumed(t *testing.T) {
	listed := false
	escrow := &mockEscrowRepo{
		enqueueFn: func(_ context.Context, _ domain.EscrowClaim) error {
			t.Fatal("linking must not write escrow claims")
			return nil
		},
		listPendingFn: func(_ context.Context, toPlatformID string) ([]domain.EscrowClaim, error) {
			listed = true
			assert.Equal(t, "200", toPlatformID)
			return []domain.EscrowClaim{{ToPlatformID: "200"}, {ToPlatformID: "200"}}, nil
		},
	}
	transfers := 0
	ledger := &mockLedger{
		lookupAccountFn: func(_ context.Context, _ string) (string, error) {
			return "bee", nil
		},
		transferFn: func(_ context.Context, _, _ string, _ int) error {
			transfers++
			return nil
		},
	}
	svc := NewAccountService(&mockAccountRepo{}, escrow, ledger)

	_, err := svc.Link(context.Background(), "200", "key")

	require.NoError(t, err)
	assert.True(t, listed)
	assert.Zero(t, transfers)
}

func TestLink_PendingClaimsErrorIgnored(t *testing.T) {
	escrow := &mockEscrowRepo{
		listPendingFn: func(_ context.Context, _ string) ([]domain.EscrowClaim, error) {
			return nil, errors.New("db down")
		},
	}
	ledger := &mockLedger{
		lookupAccountFn: func(_ context.Context, _ string) (string, error) {
			return "bee", nil
		},
	}
	svc := NewAccountService(&mockAccountRepo{}, escrow, ledger)

	result, err := svc.Link(context.Background(), "200", "key")

	require.NoError(t, err)
	assert.Equal(t, LinkCreated, result)
}

func TestSetNotifications(t *testing.T) {
	tests := []struct {
		name       string
		thresholds domain.NotificationThresholds
		wantErr    error
	}{
		{name: "both absent", thresholds: domain.NotificationThresholds{}},
		{name: "disabled and zero", thresholds: domain.NotificationThresholds{Send: intPtr(-1), Receive: intPtr(0)}},
		{name: "positive", thresholds: domain.NotificationThresholds{Send: intPtr(10), Receive: intPtr(3)}},
		{name: "invalid send", thresholds: domain.NotificationThresholds{Send: intPtr(-2)}, wantErr: domain.ErrInvalidThreshold},
		{name: "invalid receive", thresholds: domain.NotificationThresholds{Receive: intPtr(-5)}, wantErr: domain.ErrInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stored *domain.NotificationThresholds
			accounts := &mockAccountRepo{
				setNotificationThresholdsFn: func(_ context.Context, _ string, thresholds domain.NotificationThresholds) error {
					stored = &thresholds
					return nil
				},
			}
			svc := NewAccountService(accounts, &mockEscrowRepo{}, &mockLedger{})

			err := svc.SetNotifications(context.Background(), "100", tt.thresholds)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, stored)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, tt.thresholds, *stored)
		})
	}
}

func TestSetNotifications_NotLinked(t *testing.T) {
	accounts := &mockAccountRepo{
		setNotificationThresholdsFn: func(_ context.Context, _ string, _ domain.NotificationThresholds) error {
			return domain.ErrAccountNotFound
		},
	}
	svc := NewAccountService(accounts, &mockEscrowRepo{}, &mockLedger{})

	err := svc.SetNotifications(context.Background(), "100", domain.NotificationThresholds{})

	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

package domain

import (
	"context"
	"time"
)

// NotificationsDisabled is the threshold value that turns off DMs for one direction.
const NotificationsDisabled = -1

// NotificationThresholds holds the minimum reaction value that triggers a DM.
// A nil field means "always notify".
type NotificationThresholds struct {
	Send    *int
	Receive *int
}

// Account links a chat platform member to an external ledger identity.
// LedgerCredential and LedgerUsername are always set together.
type Account struct {
	PlatformID       string
	LedgerCredential string
	LedgerUsername   string
	Notifications    NotificationThresholds
	TotalDonated     int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type AccountRepository interface {
	Get(ctx context.Context, platformID string) (*Account, error)
	// Link creates or overwrites the ledger linkage. created is true when no
	// account existed before the call.
	Link(ctx context.Context, platformID, credential, username string) (created bool, err error)
	RecordDonation(ctx context.Context, platformID string, amount int) error
	SetNotificationThresholds(ctx context.Context, platformID string, thresholds NotificationThresholds) error
}

package discord

import (
	"context"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRetractReaction(t *testing.T) {
	ref := domain.ReactionRef{ChannelID: "c1", MessageID: "m1", UserID: "100", EmojiAPIName: "clap:1234"}

	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "removed", err: nil},
		{name: "message deleted", err: restError(http.StatusNotFound, discordgo.ErrCodeUnknownMessage)},
		{name: "emoji deleted", err: restError(http.StatusNotFound, discordgo.ErrCodeUnknownEmoji)},
		{name: "missing permissions", err: restError(http.StatusForbidden, discordgo.ErrCodeMissingPermissions), wantErr: true},
		{name: "server error", err: restError(http.StatusInternalServerError, 0), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			session := &mockSession{
				reactionRemoveFn: func(channelID, messageID, emojiID, userID string) error {
					got = []string{channelID, messageID, emojiID, userID}
					return tt.err
				},
			}

			err := NewRetractor(session).RetractReaction(context.Background(), ref)

			assert.Equal(t, []string{"c1", "m1", "clap:1234", "100"}, got)
			if tt.wantErr {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
)

// Retractor removes a member's reaction from a message.
type Retractor struct {
	session Session
}

var _ domain.ReactionRetractor = (*Retractor)(nil)

func NewRetractor(session Session) *Retractor {
	return &Retractor{session: session}
}

// RetractReaction treats an already deleted message or emoji as success.
func (r *Retractor) RetractReaction(ctx context.Context, ref domain.ReactionRef) error {
	err := r.session.MessageReactionRemove(ref.ChannelID, ref.MessageID, ref.EmojiAPIName, ref.UserID, discordgo.WithContext(ctx))
	if err == nil {
		return nil
	}

	switch restCode(err) {
	case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownEmoji:
		return nil
	}
	return fmt.Errorf("failed to remove reaction: %w", err)
}

package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/app"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/platform/correlation"
)

const (
	cmdLogin         = "login"
	cmdNotifications = "notifications"

	optAPIKey  = "api-key"
	optSend    = "send"
	optReceive = "receive"
)

const (
	replyInvalidKey      = "Invalid API key."
	replyUnknownError    = "An unknown error occurred."
	replyKeyUpdated      = "Your API key has been updated."
	replyAccountLinked   = "You have linked your account."
	replyNotLinked       = "You are not logged in. Please use /login first."
	replyInvalidValue    = "Thresholds must be -1 (off) or a non-negative number."
	replyNotifySaved     = "Your notification settings have been saved."
	notifyOptDescription = "Minimum kudos value that triggers a message. -1 turns it off, omit to always notify."
)

var thresholdMin = float64(domain.NotificationsDisabled)

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdLogin,
			Description: "Login with your API key.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optAPIKey,
					Description: "Your API key.",
					Required:    true,
				},
			},
		},
		{
			Name:        cmdNotifications,
			Description: "Choose which kudos transfers send you a direct message.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        optSend,
					Description: notifyOptDescription,
					MinValue:    &thresholdMin,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        optReceive,
					Description: notifyOptDescription,
					MinValue:    &thresholdMin,
				},
			},
		},
	}
}

func (b *Bot) registerCommands(ctx context.Context) error {
	cmds, err := b.session.ApplicationCommandBulkOverwrite(b.cfg.AppID, b.cfg.GuildID, commandDefinitions(), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to overwrite application commands: %w", err)
	}
	slog.Info("Application commands registered", "count", len(cmds), "guild_id", b.cfg.GuildID)
	return nil
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	userID := interactionUserID(i.Interaction)
	if userID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, b.cfg.EventTimeout)
	defer cancel()
	ctx = correlation.WithID(ctx, correlation.NewID())

	data := i.ApplicationCommandData()
	ctx = correlation.WithAttrs(ctx, slog.String("command", data.Name), slog.String("user", userID))

	switch data.Name {
	case cmdLogin:
		b.handleLogin(ctx, i.Interaction, userID, data.Options)
	case cmdNotifications:
		b.handleNotifications(ctx, i.Interaction, userID, data.Options)
	}
}

// handleLogin defers the reply because the ledger lookup may be slow.
func (b *Bot) handleLogin(ctx context.Context, i *discordgo.Interaction, userID string, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
	if err != nil {
		slog.WarnContext(ctx, "Failed to defer interaction reply", "error", err)
		return
	}

	var credential string
	if opt := findOption(opts, optAPIKey); opt != nil {
		credential = opt.StringValue()
	}

	reply := b.loginReply(ctx, userID, credential)
	if _, err := b.session.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &reply}, discordgo.WithContext(ctx)); err != nil {
		slog.WarnContext(ctx, "Failed to send interaction reply", "error", err)
	}
}

func (b *Bot) loginReply(ctx context.Context, userID, credential string) string {
	if credential == "" {
		return replyInvalidKey
	}

	result, err := b.accounts.Link(ctx, userID, credential)
	switch {
	case errors.Is(err, domain.ErrLedgerAccountNotFound):
		return replyInvalidKey
	case err != nil:
		slog.ErrorContext(ctx, "Account link failed", "error", err)
		return replyUnknownError
	case result == app.LinkUpdated:
		return replyKeyUpdated
	default:
		return replyAccountLinked
	}
}

func (b *Bot) handleNotifications(ctx context.Context, i *discordgo.Interaction, userID string, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	reply := b.notificationsReply(ctx, userID, thresholdsFromOptions(opts))
	b.respondEphemeral(ctx, i, reply)
}

func (b *Bot) notificationsReply(ctx context.Context, userID string, thresholds domain.NotificationThresholds) string {
	err := b.accounts.SetNotifications(ctx, userID, thresholds)
	switch {
	case err == nil:
		return replyNotifySaved
	case errors.Is(err, domain.ErrAccountNotFound):
		return replyNotLinked
	case errors.Is(err, domain.ErrInvalidThreshold):
		return replyInvalidValue
	default:
		slog.ErrorContext(ctx, "Failed to save notification settings", "error", err)
		return replyUnknownError
	}
}

func (b *Bot) respondEphemeral(ctx context.Context, i *discordgo.Interaction, content string) {
	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		slog.WarnContext(ctx, "Failed to send interaction reply", "error", err)
	}
}

// thresholdsFromOptions leaves omitted options nil ("always notify").
func thresholdsFromOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) domain.NotificationThresholds {
	var t domain.NotificationThresholds
	if opt := findOption(opts, optSend); opt != nil {
		v := int(opt.IntValue())
		t.Send = &v
	}
	if opt := findOption(opts, optReceive); opt != nil {
		v := int(opt.IntValue())
		t.Receive = &v
	}
	return t
}

func findOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, o := range opts {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// interactionUserID covers both guild (Member) and DM (User) invocations.
func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

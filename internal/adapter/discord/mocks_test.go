package discord

import (
	"context"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/app"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
)

// --- Mock Session ---

type sentMessage struct {
	channelID string
	content   string
	embed     *discordgo.MessageEmbed
}

type mockSession struct {
	mu sync.Mutex

	channelMessageFn     func(channelID, messageID string) (*discordgo.Message, error)
	userChannelCreateFn  func(recipientID string) (*discordgo.Channel, error)
	sendFn               func(channelID, content string) error
	reactionRemoveFn     func(channelID, messageID, emojiID, userID string) error
	bulkOverwriteFn      func(appID, guildID string, cmds []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error)
	interactionRespondFn func(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error

	sent      []sentMessage
	responses []*discordgo.InteractionResponse
	edits     []string
	fetches   int
}

func (m *mockSession) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()
	if m.channelMessageFn != nil {
		return m.channelMessageFn(channelID, messageID)
	}
	return nil, restError(http.StatusNotFound, discordgo.ErrCodeUnknownMessage)
}

func (m *mockSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.sendFn != nil {
		if err := m.sendFn(channelID, content); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{channelID: channelID, content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (m *mockSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.sendFn != nil {
		if err := m.sendFn(channelID, embed.Description); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{channelID: channelID, embed: embed})
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (m *mockSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if m.userChannelCreateFn != nil {
		return m.userChannelCreateFn(recipientID)
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (m *mockSession) MessageReactionRemove(channelID, messageID, emojiID, userID string, _ ...discordgo.RequestOption) error {
	if m.reactionRemoveFn != nil {
		return m.reactionRemoveFn(channelID, messageID, emojiID, userID)
	}
	return nil
}

func (m *mockSession) InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	m.responses = append(m.responses, resp)
	m.mu.Unlock()
	if m.interactionRespondFn != nil {
		return m.interactionRespondFn(i, resp)
	}
	return nil
}

func (m *mockSession) InteractionResponseEdit(_ *discordgo.Interaction, newresp *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if newresp.Content != nil {
		m.edits = append(m.edits, *newresp.Content)
	}
	return &discordgo.Message{}, nil
}

func (m *mockSession) ApplicationCommandBulkOverwrite(appID, guildID string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	if m.bulkOverwriteFn != nil {
		return m.bulkOverwriteFn(appID, guildID, cmds)
	}
	return cmds, nil
}

func (m *mockSession) sentMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

// --- Mock MessageCache ---

type mockCache struct {
	messages map[string]*discordgo.Message
}

func (c *mockCache) Message(_, messageID string) (*discordgo.Message, error) {
	if msg, ok := c.messages[messageID]; ok {
		return msg, nil
	}
	return nil, discordgo.ErrStateNotFound
}

// --- Mock ReactionHandler ---

type mockReactions struct {
	mu       sync.Mutex
	events   []domain.ReactionEvent
	handleFn func(ctx context.Context, ev domain.ReactionEvent) (domain.Outcome, error)
}

func (m *mockReactions) HandleReaction(ctx context.Context, ev domain.ReactionEvent) (domain.Outcome, error) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	if m.handleFn != nil {
		return m.handleFn(ctx, ev)
	}
	return domain.OutcomeTransferred, nil
}

// --- Mock AccountCommands ---

type mockAccounts struct {
	linkFn             func(ctx context.Context, platformID, credential string) (app.LinkResult, error)
	setNotificationsFn func(ctx context.Context, platformID string, thresholds domain.NotificationThresholds) error
}

func (m *mockAccounts) Link(ctx context.Context, platformID, credential string) (app.LinkResult, error) {
	if m.linkFn != nil {
		return m.linkFn(ctx, platformID, credential)
	}
	return app.LinkCreated, nil
}

func (m *mockAccounts) SetNotifications(ctx context.Context, platformID string, thresholds domain.NotificationThresholds) error {
	if m.setNotificationsFn != nil {
		return m.setNotificationsFn(ctx, platformID, thresholds)
	}
	return nil
}

func restError(status, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: http.StatusText(status)},
		Message:  &discordgo.APIErrorMessage{Code: code},
	}
}

package app

import (
	"fmt"
	"time"

	"github.com/cbroglie/mustache"
	"github.com/hako/durafmt"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	msgNotLoggedIn       = "You are not logged in. Please use /login in the server."
	msgInsufficientFunds = "You don't have enough kudos."
)

// Messages renders the direct messages sent by the transfer workflow.
type Messages struct {
	defaultTemplate string
	escrowWindow    string
	printer         *message.Printer
}

// NewMessages validates the default receive template. escrowWindow is only
// used in user-facing text; it is not enforced anywhere.
func NewMessages(defaultTemplate string, escrowWindow time.Duration) (*Messages, error) {
	if err := ValidateTemplate(defaultTemplate); err != nil {
		return nil, fmt.Errorf("invalid default message: %w", err)
	}

	return &Messages{
		defaultTemplate: defaultTemplate,
		escrowWindow:    durafmt.Parse(escrowWindow).LimitFirstN(2).String(),
		printer:         message.NewPrinter(language.AmericanEnglish),
	}, nil
}

// ValidateTemplate reports whether tmpl is a well-formed mustache template.
func ValidateTemplate(tmpl string) error {
	if _, err := mustache.ParseStringRaw(tmpl, true); err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return nil
}

func (m *Messages) Amount(value int) string {
	return m.printer.Sprintf("%d", value)
}

func (m *Messages) EscrowRecipient() string {
	return fmt.Sprintf("Someone has tried to give you kudos, but you are not logged in. Please use /login in the server within %s to claim your kudos.", m.escrowWindow)
}

func (m *Messages) EscrowSender(recipientID string) string {
	return fmt.Sprintf("%s is not logged in. If they log in within %s they will receive the reward.", mention(recipientID), m.escrowWindow)
}

func (m *Messages) Sent(recipientID string, value int) string {
	return fmt.Sprintf("You have given %s %s kudos.", mention(recipientID), m.Amount(value))
}

// Received renders the rule's custom message, or the default one, without HTML escaping.
func (m *Messages) Received(customTemplate string, value int, senderID, messageURL string) (string, error) {
	tmpl := customTemplate
	if tmpl == "" {
		tmpl = m.defaultTemplate
	}

	out, err := mustache.RenderRaw(tmpl, true, map[string]string{
		"amount":       m.Amount(value),
		"user_mention": mention(senderID) + " ",
		"message_url":  messageURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render receive message: %w", err)
	}
	return out, nil
}

func mention(platformID string) string {
	return "<@" + platformID + ">"
}

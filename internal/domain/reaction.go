package domain

import (
	"context"
	"fmt"
)

// ReactionRule maps a reaction symbol to a kudos value and an optional
// receive message template.
type ReactionRule struct {
	Symbol  string
	Value   int
	Message string
}

// RuleTable is an immutable symbol -> rule lookup built once at startup.
type RuleTable struct {
	rules map[string]ReactionRule
}

func NewRuleTable(rules []ReactionRule) (*RuleTable, error) {
	table := &RuleTable{rules: make(map[string]ReactionRule, len(rules))}
	for _, r := range rules {
		if r.Symbol == "" {
			return nil, fmt.Errorf("reaction rule has empty symbol")
		}
		if r.Value <= 0 {
			return nil, fmt.Errorf("reaction rule %q: value must be positive, got %d", r.Symbol, r.Value)
		}
		if _, dup := table.rules[r.Symbol]; dup {
			return nil, fmt.Errorf("duplicate reaction rule %q", r.Symbol)
		}
		table.rules[r.Symbol] = r
	}
	return table, nil
}

// Lookup returns the rule for symbol. A missing symbol is a normal outcome.
func (t *RuleTable) Lookup(symbol string) (ReactionRule, bool) {
	r, ok := t.rules[symbol]
	return r, ok
}

func (t *RuleTable) Len() int {
	return len(t.rules)
}

// ReactionRef identifies one member's reaction on one message.
type ReactionRef struct {
	ChannelID string
	MessageID string
	UserID    string
	// EmojiAPIName is the platform's encoding of the emoji for removal calls.
	EmojiAPIName string
}

// ReactionEvent is a reaction-added event with the message author already
// resolved to the effective author.
type ReactionEvent struct {
	Ref        ReactionRef
	Symbol     string
	ActorID    string
	AuthorID   string
	MessageURL string
}

// ReactionRetractor removes a reaction. Removing an absent reaction is not an error.
type ReactionRetractor interface {
	RetractReaction(ctx context.Context, ref ReactionRef) error
}

package app

import "github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"

// Classification is the classifier's decision for a reaction.
type Classification int

const (
	ClassIgnored      Classification = iota // No rule for the symbol
	ClassSelfReaction                       // Actor is the effective author; reaction must be retracted
	ClassQualified                          // Eligible for a transfer
)

func (c Classification) String() string {
	switch c {
	case ClassIgnored:
		return "ignored"
	case ClassSelfReaction:
		return "self_reaction"
	case ClassQualified:
		return "qualified"
	default:
		return "unknown"
	}
}

// Classifier decides whether a reaction is worth kudos. It has no side effects.
type Classifier struct {
	rules *domain.RuleTable
}

func NewClassifier(rules *domain.RuleTable) *Classifier {
	return &Classifier{rules: rules}
}

// Classify looks the symbol up first, so unrecognised reactions on one's own
// message are left alone.
func (c *Classifier) Classify(symbol, actorID, authorID string) (domain.ReactionRule, Classification) {
	rule, ok := c.rules.Lookup(symbol)
	if !ok {
		return domain.ReactionRule{}, ClassIgnored
	}
	if actorID == authorID {
		return domain.ReactionRule{}, ClassSelfReaction
	}
	return rule, ClassQualified
}

package app

import (
	"testing"

	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	rules, err := domain.NewRuleTable([]domain.ReactionRule{
		{Symbol: "clap", Value: 5, Message: "Thanks!"},
		{Symbol: "1234567890", Value: 2},
	})
	require.NoError(t, err)
	c := NewClassifier(rules)

	tests := []struct {
		name      string
		symbol    string
		actor     string
		author    string
		want      Classification
		wantValue int
	}{
		{name: "known symbol from another member", symbol: "clap", actor: "a", author: "b", want: ClassQualified, wantValue: 5},
		{name: "emoji id symbol", symbol: "1234567890", actor: "a", author: "b", want: ClassQualified, wantValue: 2},
		{name: "known symbol on own message", symbol: "clap", actor: "a", author: "a", want: ClassSelfReaction},
		{name: "unknown symbol", symbol: "wave", actor: "a", author: "b", want: ClassIgnored},
		{name: "unknown symbol on own message", symbol: "wave", actor: "a", author: "a", want: ClassIgnored},
		{name: "symbols are case sensitive", symbol: "Clap", actor: "a", author: "b", want: ClassIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, class := c.Classify(tt.symbol, tt.actor, tt.author)
			assert.Equal(t, tt.want, class)
			assert.Equal(t, tt.wantValue, rule.Value)
		})
	}
}

func TestClassificationString(t *testing.T) {
	assert.Equal(t, "ignored", ClassIgnored.String())
	assert.Equal(t, "self_reaction", ClassSelfReaction.String())
	assert.Equal(t, "qualified", ClassQualified.String())
	assert.Equal(t, "unknown", Classification(42).String())
}

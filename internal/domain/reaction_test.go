package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleTable_Lookup(t *testing.T) {
	table, err := NewRuleTable([]ReactionRule{
		{Symbol: "clap", Value: 5, Message: "Thanks!"},
		{Symbol: "1234567890", Value: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	rule, ok := table.Lookup("clap")
	require.True(t, ok)
	assert.Equal(t, 5, rule.Value)
	assert.Equal(t, "Thanks!", rule.Message)

	_, ok = table.Lookup("Clap")
	assert.False(t, ok, "symbols are case sensitive")

	_, ok = table.Lookup("")
	assert.False(t, ok)
}

func TestNewRuleTable_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		rules []ReactionRule
	}{
		{"empty symbol", []ReactionRule{{Symbol: "", Value: 1}}},
		{"zero value", []ReactionRule{{Symbol: "clap", Value: 0}}},
		{"negative value", []ReactionRule{{Symbol: "clap", Value: -3}}},
		{"duplicate", []ReactionRule{{Symbol: "clap", Value: 1}, {Symbol: "clap", Value: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewRuleTable(tt.rules)
			assert.Error(t, err)
			assert.Nil(t, table)
		})
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "transferred", OutcomeTransferred.String())
	assert.Equal(t, "escrowed", OutcomeEscrowed.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}

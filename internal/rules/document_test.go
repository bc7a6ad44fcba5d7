package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/dnd-character-engine/internal/rules"
)

func TestDocument_FeaturesUpToLevel(t *testing.T) {
	doc := &rules.Document{
		Name: "Cleric",
		FeaturesByLevel: map[int]map[string]*rules.Feature{
			1: {"Spellcasting": {Description: "You cast spells."}},
			2: {"Channel Divinity": {Description: "You channel divine power."}},
			5: {"Sear Undead": {Description: "Your turning burns."}},
		},
	}

	features := doc.FeaturesUpToLevel(2)
	require.Len(t, features, 2)
	assert.Equal(t, 1, features["Spellcasting"].Level)
	assert.Equal(t, 2, features["Channel Divinity"].Level)
	assert.NotContains(t, features, "Sear Undead")

	assert.Len(t, doc.FeaturesUpToLevel(20), 3)
	assert.Empty(t, (&rules.Document{}).FeaturesUpToLevel(20))
}

func TestDocument_List(t *testing.T) {
	doc := &rules.Document{
		Name: "Cleric",
		Lists: map[string]rules.OptionList{
			"divine_orders": {"Protector": {}},
		},
	}

	list, ok := doc.List("divine_orders")
	assert.True(t, ok)
	assert.Contains(t, list, "Protector")

	_, ok = doc.List("missing")
	assert.False(t, ok)

	var nilDoc *rules.Document
	_, ok = nilDoc.List("anything")
	assert.False(t, ok)
}

func TestChoiceDecl_RequiredCount(t *testing.T) {
	assert.Equal(t, 1, (&rules.ChoiceDecl{}).RequiredCount())
	assert.Equal(t, 3, (&rules.ChoiceDecl{Count: 3}).RequiredCount())
}

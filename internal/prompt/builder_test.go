package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnThisDaySplitsRulesAndSubject(t *testing.T) {
	pb := NewPromptBuilder()

	blurb, err := pb.OnThisDay("  LeBron James ", "December 30", 200)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(blurb.Rules, `Write ONE line (<=200 characters) "On This Day" NBA blurb.`), blurb.Rules)
	assert.Contains(t, blurb.Rules, "- Max 200 characters.")
	assert.NotContains(t, blurb.Rules, "LeBron")
	assert.Equal(t, "Player: LeBron James\nMonth/Day: December 30", blurb.Subject)
}

func TestBlurbStringPutsSubjectLast(t *testing.T) {
	blurb, err := NewPromptBuilder().OnThisDay("Kobe Bryant", "January 22", 120)
	require.NoError(t, err)

	joined := blurb.String()
	assert.True(t, strings.HasPrefix(joined, blurb.Rules))
	assert.True(t, strings.HasSuffix(joined, "Month/Day: January 22"))
}

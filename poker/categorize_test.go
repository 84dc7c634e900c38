package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStartingHand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cards string
		want  StartingTier
	}{
		{"pocket aces", "As Ah", TierPremium},
		{"pocket jacks", "Jh Jd", TierPremium},
		{"ace king offsuit", "Ac Kh", TierPremium},
		{"king ace reversed", "Kh Ac", TierPremium},
		{"pocket tens", "Tc Th", TierStrong},
		{"ace queen", "Qh Ac", TierStrong},
		{"ace jack suited", "As Js", TierStrong},
		{"pocket nines", "9c 9h", TierMedium},
		{"king queen suited", "Ks Qs", TierMedium},
		{"pocket deuces", "2c 2h", TierWeak},
		{"suited connector", "8h 7h", TierWeak},
		{"suited one gapper", "9d 7d", TierWeak},
		{"offsuit junk", "7c 2d", TierTrash},
		{"king queen offsuit", "Ks Qd", TierTrash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cards := MustParseCards(tt.cards)
			assert.Equal(t, tt.want, ClassifyStartingHand(cards[0], cards[1]))
		})
	}
}

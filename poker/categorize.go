package poker

// StartingTier buckets a two-card starting hand by preflop strength
type StartingTier int

const (
	TierTrash StartingTier = iota
	TierWeak
	TierMedium
	TierStrong
	TierPremium
)

func (t StartingTier) String() string {
	return [...]string{"trash", "weak", "medium", "strong", "premium"}[t]
}

// ClassifyStartingHand gives a coarse preflop tier:
// premium (JJ+, AK), strong (TT, AQ, AJ), medium (77-99, suited broadway),
// weak (22-66, suited connectors and one-gappers), trash otherwise.
func ClassifyStartingHand(a, b Card) StartingTier {
	low, high := a.Rank, b.Rank
	if low > high {
		low, high = high, low
	}
	pair := low == high
	suited := a.Suit == b.Suit

	switch {
	case pair && low >= Jack, low == King && high == Ace:
		return TierPremium
	case pair && low == Ten, high == Ace && (low == Queen || low == Jack):
		return TierStrong
	case pair && low >= Seven, suited && low >= Ten:
		return TierMedium
	case pair, suited && high-low <= 2:
		return TierWeak
	}
	return TierTrash
}

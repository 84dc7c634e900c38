package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandEvaluatorOrdering(t *testing.T) {
	t.Parallel()

	board := "2c 7d 9h Js Qs"
	eval := HandEvaluator{}

	hands := []string{
		"3d 4h", // queen high
		"Qd 5h", // pair of queens
		"Jh Qh", // two pair
		"9s 9d", // trips
		"Ts Ks", // straight
	}

	var prev int
	for i, hole := range hands {
		cards := MustParseCards(hole + " " + board)
		got, err := eval.EvaluateBestHand(cards)
		require.NoError(t, err)
		assert.NotEmpty(t, got.Name)
		if i > 0 {
			assert.Greater(t, got.Value, prev, "%s should beat the previous hand", hole)
		}
		prev = got.Value
	}
}

func TestHandEvaluatorTies(t *testing.T) {
	t.Parallel()

	board := "As Ks Qd Jc Th"
	eval := HandEvaluator{}

	a, err := eval.EvaluateBestHand(MustParseCards("2c 3d " + board))
	require.NoError(t, err)
	b, err := eval.EvaluateBestHand(MustParseCards("4h 5s " + board))
	require.NoError(t, err)

	assert.Equal(t, a.Value, b.Value, "both play the board straight")
}

func TestHandEvaluatorRejectsShortHands(t *testing.T) {
	t.Parallel()

	_, err := HandEvaluator{}.EvaluateBestHand(MustParseCards("As Ks Qs Js Ts"))
	assert.Error(t, err)
}

func TestEvaluatorFunc(t *testing.T) {
	t.Parallel()

	var e Evaluator = EvaluatorFunc(func(cards []Card) (HandValue, error) {
		return HandValue{Value: len(cards), Name: "count"}, nil
	})
	got, err := e.EvaluateBestHand(MustParseCards("As Ks"))
	require.NoError(t, err)
	assert.Equal(t, HandValue{Value: 2, Name: "count"}, got)
}

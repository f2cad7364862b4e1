package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuggestNearFlagsCloseNames(t *testing.T) {
	t.Parallel()

	existing := []Item{{PrimaryID: "A", DisplayName: "Steel Beam 300mm"}}
	unique := []Item{
		{PrimaryID: "B", DisplayName: "Steel Beam 300m"},
		{PrimaryID: "C", DisplayName: "Glass Panel"},
	}

	got := SuggestNear(existing, unique)
	require.Len(t, got, 1)
	require.Equal(t, "B", got[0].Item.PrimaryID)
	require.Equal(t, "A", got[0].Near.PrimaryID)
	require.Greater(t, got[0].Similarity, 0.6)
}

func TestSuggestNearSkipsExactAndEmptyNames(t *testing.T) {
	t.Parallel()

	existing := []Item{{PrimaryID: "A", DisplayName: "Steel Beam"}}
	unique := []Item{
		{PrimaryID: "B", DisplayName: "steel beam"}, // exact after folding, already handled upstream
		{PrimaryID: "C"},
	}
	require.Empty(t, SuggestNear(existing, unique))
}

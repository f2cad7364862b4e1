package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	id, ok := Static{ID: "owner-1"}.PrincipalID()
	require.True(t, ok)
	require.Equal(t, "owner-1", id)

	_, ok = Static{}.PrincipalID()
	require.False(t, ok)

	_, ok = Unauthenticated.PrincipalID()
	require.False(t, ok)
}

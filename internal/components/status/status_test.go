package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTurnOnStatus(t *testing.T) {
	st := NewStatusMgr()
	require.False(t, st.InOne(Connected, Syncing, Executing))
	st.On(Connected)
	require.True(t, st.InOne(Connected, Syncing, Executing))
	require.False(t, st.InOne(Syncing))
	require.True(t, st.In(Connected))
	st.Off(Connected)
	require.False(t, st.InOne(Connected, Syncing, Executing))

	st.On(Executing)
	require.True(t, st.In(Executing))

	st.On(Executing)
	require.True(t, st.In(Executing))

	st.Off(Executing)
	require.False(t, st.InOne(Executing))
}

func TestStatusNames(t *testing.T) {
	st := NewStatusMgr()
	require.Empty(t, st.Names())

	st.On(Syncing, Settling)
	require.Equal(t, []string{"syncing", "settling"}, st.Names())

	st.Reset()
	require.Empty(t, st.Names())
}

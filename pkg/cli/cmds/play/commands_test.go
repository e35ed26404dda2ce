package play

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/minefield/pkg/comm"
	"github.com/robotalks/minefield/pkg/host"
)

func TestBoardView(t *testing.T) {
	b, err := host.DecodeMinefield([]byte{0, 1, 9, 0, 1, 1, 0, 0, 0})
	require.NoError(t, err)
	require.NoError(t, b.Apply(comm.StatusLose, []byte{0, 2, 9}))
	v := ViewOf(b, 7, false)
	require.Equal(t, 3, v.Size)
	require.Equal(t, 1, v.Mines)
	require.Equal(t, 1, v.Opened)
	require.Equal(t, "lose", v.Status)
	require.Equal(t, "    0 1 2\n 0  # # *\n 1  # # #\n 2  # # #\n3x3 mines=1 opened=1 status=lose time=7s\n", v.String())
}

package control

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghalamif/BattleTrack/internal/domain"
)

func TestMixExamples(t *testing.T) {
	cases := []struct {
		x, y        int8
		left, right int8
	}{
		{0, 50, 50, 50},
		{30, 50, 80, 20},
		{-20, -40, -60, -20},
		{0, -50, -50, -50},
		{100, 100, 100, 0},
		{-100, 100, 0, 100},
	}
	for _, tc := range cases {
		l, r := Mix(tc.x, tc.y)
		require.Equalf(t, tc.left, l, "mix(%d,%d) left", tc.x, tc.y)
		require.Equalf(t, tc.right, r, "mix(%d,%d) right", tc.x, tc.y)
	}
}

func TestMixNeverLeavesRange(t *testing.T) {
	for x := -100; x <= 100; x += 5 {
		for y := -100; y <= 100; y += 5 {
			l, r := Mix(int8(x), int8(y))
			require.True(t, l >= -100 && l <= 100, "left out of range for %d,%d: %d", x, y, l)
			require.True(t, r >= -100 && r <= 100, "right out of range for %d,%d: %d", x, y, r)
		}
	}
}

func TestSpin(t *testing.T) {
	l, r := Spin(50)
	require.Equal(t, int8(50), l)
	require.Equal(t, int8(-50), r)

	l, r = Spin(-30)
	require.Equal(t, int8(-30), l)
	require.Equal(t, int8(30), r)
}

func TestSideCommand(t *testing.T) {
	require.Equal(t, domain.MotorCommand{Direction: domain.DirForward, Duty: 80}, SideCommand(80))
	require.Equal(t, domain.MotorCommand{Direction: domain.DirBackward, Duty: 60}, SideCommand(-60))
	require.Equal(t, domain.MotorCommand{Direction: domain.DirStop}, SideCommand(0))
	require.Equal(t, domain.MotorCommand{Direction: domain.DirBackward, Duty: 100}, SideCommand(-128))
}

func TestTracks(t *testing.T) {
	l, r, ok := Tracks(domain.MoveCommand(30, 50))
	require.True(t, ok)
	require.Equal(t, SideCommand(80), l)
	require.Equal(t, SideCommand(20), r)

	l, r, ok = Tracks(domain.SpinCommand(40))
	require.True(t, ok)
	require.Equal(t, domain.DirForward, l.Direction)
	require.Equal(t, domain.DirBackward, r.Direction)

	_, _, ok = Tracks(domain.DisableCommand())
	require.False(t, ok)
}

package motorlink

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghalamif/BattleTrack/internal/domain"
)

func TestLinkWritesAndCaches(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	require.NoError(t, l.SetStandby(true))
	require.NoError(t, l.Apply(domain.SideLeft, domain.MotorCommand{Direction: domain.DirForward, Duty: 80}))
	require.NoError(t, l.Apply(domain.SideLeft, domain.MotorCommand{Direction: domain.DirForward, Duty: 80}))
	require.NoError(t, l.Apply(domain.SideRight, domain.MotorCommand{Direction: domain.DirBackward, Duty: 20}))
	require.NoError(t, l.Servo().SetDuty(0.075))
	require.NoError(t, l.LED(LEDState).Set(true))
	require.NoError(t, l.LED(LEDLink).Set(true))
	require.NoError(t, l.LED(LEDState).Set(true))
	require.NoError(t, l.SetStandby(true))

	require.Equal(t, "S 1\nM 0 1 80\nM 1 2 20\nP 750\nL 0 1\nL 1 1\n", buf.String())
}

func TestLinkServoRange(t *testing.T) {
	l := New(&bytes.Buffer{})
	require.Error(t, l.Servo().SetDuty(1.5))
	require.Error(t, l.Servo().SetDuty(-0.1))
}

type flakyWriter struct {
	fail bool
	buf  bytes.Buffer
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	if w.fail {
		return 0, errors.New("port gone")
	}
	return w.buf.Write(p)
}

func TestLinkRetriesAfterFailure(t *testing.T) {
	w := &flakyWriter{fail: true}
	l := New(w)

	require.Error(t, l.SetStandby(false))
	w.fail = false
	require.NoError(t, l.SetStandby(false))
	require.Equal(t, "S 0\n", w.buf.String())
}

func TestWaitStart(t *testing.T) {
	require.NoError(t, waitStart(bufio.NewReader(strings.NewReader("init\r\nstart\n"))))

	err := waitStart(bufio.NewReader(strings.NewReader("init\nboot\n")))
	require.Error(t, err)
	require.Contains(t, err.Error(), `"boot"`)

	require.Error(t, waitStart(bufio.NewReader(strings.NewReader("init\n"))))
}

// Package pipeline holds the long-lived tasks of both execution units: input
// polling and decision on the controller unit, drive, servo and indicator on
// the actuation unit.
package pipeline

import (
	"github.com/ghalamif/BattleTrack/internal/adapters/queue"
	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// Channels is every link between tasks. The runtime builds one set and hands
// each end to exactly one task.
type Channels struct {
	Readings *queue.Channel[domain.Reading]

	Drive     *queue.Channel[domain.DriveCommand]
	Servo     *queue.Channel[domain.ServoCommand]
	Indicator *queue.Channel[domain.IndicatorPattern]

	DriveStatus     *queue.Channel[domain.StatusReport]
	ServoStatus     *queue.Channel[domain.StatusReport]
	IndicatorStatus *queue.Channel[domain.StatusReport]

	Feedback  *queue.Signal[domain.Feedback]
	LinkPulse *queue.Signal[struct{}]
	Emergency *queue.Signal[string]

	// Alert is raised by an actuation task next to a faulted status report.
	Alert *queue.Signal[struct{}]
}

func NewChannels(pol ports.Policy) *Channels {
	return &Channels{
		Readings: queue.NewChannel[domain.Reading]("readings", pol.CommandDepth),

		Drive:     queue.NewChannel[domain.DriveCommand]("drive", pol.CommandDepth),
		Servo:     queue.NewChannel[domain.ServoCommand]("servo", pol.CommandDepth),
		Indicator: queue.NewChannel[domain.IndicatorPattern]("indicator", pol.CommandDepth),

		DriveStatus:     queue.NewChannel[domain.StatusReport]("drive-status", pol.StatusDepth),
		ServoStatus:     queue.NewChannel[domain.StatusReport]("servo-status", pol.StatusDepth),
		IndicatorStatus: queue.NewChannel[domain.StatusReport]("indicator-status", pol.StatusDepth),

		Feedback:  queue.NewSignal[domain.Feedback](),
		LinkPulse: queue.NewSignal[struct{}](),
		Emergency: queue.NewSignal[string](),
		Alert:     queue.NewSignal[struct{}](),
	}
}

// Statuses lists the status channels in the order the decision task drains
// them.
func (c *Channels) Statuses() []ports.Receiver[domain.StatusReport] {
	return []ports.Receiver[domain.StatusReport]{c.DriveStatus, c.ServoStatus, c.IndicatorStatus}
}

// Close wakes every task blocked on a channel.
func (c *Channels) Close() {
	c.Readings.Close()
	c.Drive.Close()
	c.Servo.Close()
	c.Indicator.Close()
	c.DriveStatus.Close()
	c.ServoStatus.Close()
	c.IndicatorStatus.Close()
}

package domain

import "time"

// Event is one entry of the match journal: a mode transition together with
// the reason the engine gave for it.
type Event struct {
	At     time.Time `json:"at"`
	From   BotState  `json:"from"`
	To     BotState  `json:"to"`
	Reason string    `json:"reason,omitempty"`
}

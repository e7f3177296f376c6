package domain

// ChannelKind names a delivery channel.
type ChannelKind string

// Delivery channels in escalation order. Foreground is armed in parallel
// with the others.
const (
	ChannelPersistent ChannelKind = "persistent"
	ChannelRemotePush ChannelKind = "remote_push"
	ChannelForeground ChannelKind = "foreground"
)

// OutcomeStatus is the result of trying to arm a channel.
type OutcomeStatus string

// Outcome statuses.
const (
	StatusArmed       OutcomeStatus = "armed"
	StatusUnavailable OutcomeStatus = "unavailable"
	StatusFailed      OutcomeStatus = "failed"
)

// ChannelOutcome is what a channel reports back to the escalation policy.
type ChannelOutcome struct {
	Channel ChannelKind   `json:"channel"`
	Status  OutcomeStatus `json:"status"`
	Detail  string        `json:"detail,omitempty"`

	// Err carries the classified error for unavailable and failed
	// outcomes. It is not serialized.
	Err error `json:"-"`
}

// Armed builds an armed outcome.
func Armed(ch ChannelKind, detail string) ChannelOutcome {
	return ChannelOutcome{Channel: ch, Status: StatusArmed, Detail: detail}
}

// Unavailable builds an unavailable outcome wrapping ErrChannelUnavailable.
func Unavailable(ch ChannelKind, detail string) ChannelOutcome {
	return ChannelOutcome{Channel: ch, Status: StatusUnavailable, Detail: detail, Err: ErrChannelUnavailable}
}

// Failed builds a failed outcome.
func Failed(ch ChannelKind, detail string, err error) ChannelOutcome {
	return ChannelOutcome{Channel: ch, Status: StatusFailed, Detail: detail, Err: err}
}

// IsArmed reports whether the channel accepted the reminder.
func (o ChannelOutcome) IsArmed() bool {
	return o.Status == StatusArmed
}

// AnyArmed reports whether at least one outcome is armed.
func AnyArmed(outcomes []ChannelOutcome) bool {
	for _, o := range outcomes {
		if o.IsArmed() {
			return true
		}
	}
	return false
}

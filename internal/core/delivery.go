package core

import "time"

// DeliveryDelays are the offsets, measured from submission, at which each
// delivery status is applied.
type DeliveryDelays struct {
	Sending   time.Duration
	Sent      time.Duration
	Delivered time.Duration
	Read      time.Duration
}

// DefaultDeliveryDelays mirrors the demo: immediate, +0.5s, +1s, +1.5s.
func DefaultDeliveryDelays() DeliveryDelays {
	return DeliveryDelays{
		Sending:   0,
		Sent:      500 * time.Millisecond,
		Delivered: time.Second,
		Read:      1500 * time.Millisecond,
	}
}

func (d DeliveryDelays) stages() []deliveryStage {
	return []deliveryStage{
		{status: StatusSending, after: d.Sending},
		{status: StatusSent, after: d.Sent},
		{status: StatusDelivered, after: d.Delivered},
		{status: StatusRead, after: d.Read},
	}
}

type deliveryStage struct {
	status Status
	after  time.Duration
}

// DeliveryProgression walks freshly submitted user messages through
// sending, sent, delivered and read.
type DeliveryProgression struct {
	sched    *Scheduler
	delays   DeliveryDelays
	onUpdate func(id string, status Status)
}

// NewDeliveryProgression builds a simulator that applies each stage through onUpdate.
func NewDeliveryProgression(sched *Scheduler, delays DeliveryDelays, onUpdate func(id string, status Status)) *DeliveryProgression {
	return &DeliveryProgression{sched: sched, delays: delays, onUpdate: onUpdate}
}

// Start schedules every stage for the message. Each stage is an absolute
// offset from now, not chained to the previous one, so a late stage cannot
// delay the next. The returned ids belong to GroupConversation.
func (p *DeliveryProgression) Start(messageID string) []TimerID {
	stages := p.delays.stages()
	ids := make([]TimerID, 0, len(stages))
	for _, st := range stages {
		status := st.status
		ids = append(ids, p.sched.After(GroupConversation, st.after, func() {
			p.onUpdate(messageID, status)
		}))
	}
	return ids
}

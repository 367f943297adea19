package payguest

import (
	"sync"
	"time"
)

const (
	copyIdle    = "Copy"
	copyDone    = "Copied!"
	revertDelay = 2 * time.Second
)

// CopyAck manages one copy-to-clipboard affordance: Trigger flips the label to
// "Copied!" and reverts it after two seconds. Repeated triggers restart the
// timer. The payment page uses two independent instances, one for the system
// wallet address and one for the crypto amount.
type CopyAck struct {
	mu       sync.Mutex
	label    string
	delay    time.Duration
	timer    *time.Timer
	onChange func(string)
}

// NewCopyAck builds an acknowledgement with the standard two second revert.
// onChange may be nil; it fires on every label transition.
func NewCopyAck(onChange func(string)) *CopyAck {
	return &CopyAck{label: copyIdle, delay: revertDelay, onChange: onChange}
}

// NewCopyAckDelay is NewCopyAck with a custom revert delay.
func NewCopyAckDelay(delay time.Duration, onChange func(string)) *CopyAck {
	return &CopyAck{label: copyIdle, delay: delay, onChange: onChange}
}

func (a *CopyAck) Trigger() {
	a.mu.Lock()
	a.label = copyDone
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.revert)
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn(copyDone)
	}
}

func (a *CopyAck) revert() {
	a.mu.Lock()
	a.label = copyIdle
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn(copyIdle)
	}
}

func (a *CopyAck) Label() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.label
}

// Stop cancels a pending revert, for teardown.
func (a *CopyAck) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
}

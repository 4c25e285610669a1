package alerter

import (
	"context"
	"sync"
	"time"

	"github.com/kavach/kavach/internal/types"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// DefaultAutoReset is how long a beacon keeps recording after activation
const DefaultAutoReset = 60 * time.Second

// BeaconRequest describes who raised the emergency signal and where
type BeaconRequest struct {
	Operator string
	Location string
	// AlertID is reserved for the SOS alert. Empty generates one.
	AlertID string
}

// BeaconState is the emergency signal as shown to the operator
type BeaconState struct {
	Active      bool
	Recording   bool
	ActivatedAt time.Time
	Operator    string
	Location    string
	// AlertID is the id reserved for the SOS alert raised by this activation
	AlertID string
}

// BeaconChangeFunc is called after every beacon state change. Calls are
// serialized in the order the changes happened, so fn must not call back into
// the beacon.
type BeaconChangeFunc func(state BeaconState)

// Beacon is the operator's emergency signal. Activation starts recording and
// schedules a one-shot timer that stops recording after the auto-reset delay;
// the signal itself stays up until deactivated. Deactivation clears the
// pending timer.
type Beacon struct {
	log       zerolog.Logger
	autoReset time.Duration
	onChange  BeaconChangeFunc
	now       func() time.Time

	// notifyMu is held across a state change and its delivery
	notifyMu sync.Mutex
	mu       sync.Mutex
	state  BeaconState
	cancel context.CancelFunc
	gen    uint64
}

// NewBeacon creates an idle beacon. A non-positive autoReset uses DefaultAutoReset.
func NewBeacon(log zerolog.Logger, autoReset time.Duration, onChange BeaconChangeFunc) *Beacon {
	if autoReset <= 0 {
		autoReset = DefaultAutoReset
	}
	return &Beacon{
		log:       log.With().Str("component", "beacon").Logger(),
		autoReset: autoReset,
		onChange:  onChange,
		now:       time.Now,
	}
}

// State returns the current beacon state
func (b *Beacon) State() BeaconState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Activate raises the signal and starts the recording reset timer
func (b *Beacon) Activate(req BeaconRequest) (BeaconState, error) {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	if b.state.Active {
		b.mu.Unlock()
		return BeaconState{}, &types.Error{
			Code:    types.CodeInvalidTransition,
			ID:      b.state.AlertID,
			Message: "emergency beacon is already active",
		}
	}

	alertID := req.AlertID
	if alertID == "" {
		alertID = NewSOSAlertID()
	}
	b.state = BeaconState{
		Active:      true,
		Recording:   true,
		ActivatedAt: b.now(),
		Operator:    req.Operator,
		Location:    req.Location,
		AlertID:     alertID,
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.gen++
	gen := b.gen
	state := b.state
	b.mu.Unlock()

	b.log.Warn().
		Str("action", "sos_activate").
		Str("alert_id", state.AlertID).
		Str("operator", state.Operator).
		Dur("auto_reset", b.autoReset).
		Msg("Emergency beacon activated")

	go b.resetRecording(ctx, gen)
	b.notify(state)
	return state, nil
}

// Deactivate drops the signal and cancels the pending recording reset
func (b *Beacon) Deactivate() (BeaconState, error) {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	if !b.state.Active {
		b.mu.Unlock()
		return BeaconState{}, &types.Error{
			Code:    types.CodeInvalidTransition,
			Message: "emergency beacon is not active",
		}
	}
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.gen++
	alertID := b.state.AlertID
	b.state = BeaconState{}
	state := b.state
	b.mu.Unlock()

	b.log.Info().
		Str("action", "sos_deactivate").
		Str("alert_id", alertID).
		Msg("Emergency beacon deactivated")

	b.notify(state)
	return state, nil
}

// Stop cancels any pending timer without changing the signal
func (b *Beacon) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.gen++
}

func (b *Beacon) resetRecording(ctx context.Context, gen uint64) {
	t := time.NewTimer(b.autoReset)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return
	case <-t.C:
	}

	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	// a deactivate or re-activate since this timer was armed owns the state now
	if b.gen != gen || !b.state.Recording {
		b.mu.Unlock()
		return
	}
	b.state.Recording = false
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	state := b.state
	b.mu.Unlock()

	b.log.Info().
		Str("action", "sos_recording_reset").
		Str("alert_id", state.AlertID).
		Msg("Beacon recording auto-reset")
	b.notify(state)
}

// NewSOSAlertID returns a fresh id for an SOS alert
func NewSOSAlertID() string {
	return "SOS-" + ulid.Make().String()
}

func (b *Beacon) notify(state BeaconState) {
	if b.onChange != nil {
		b.onChange(state)
	}
}

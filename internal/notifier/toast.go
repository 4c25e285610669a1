package notifier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kavach/kavach/internal/alerter"
	"github.com/kavach/kavach/internal/types"
	"github.com/rs/zerolog"
)

// Variant selects how a toast is styled by the renderer
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Toast is a short operator-facing notification
type Toast struct {
	Title       string
	Description string
	Variant     Variant
	// Code is set when the toast reports a rejected operation
	Code types.Code
}

// Sink receives toasts. It runs on the caller's goroutine and must not block.
type Sink func(Toast)

// Notifier turns core outcomes into toasts for the presentation layer
type Notifier struct {
	logger zerolog.Logger
	sink   Sink
}

// NewNotifier creates a notifier. A nil sink only logs.
func NewNotifier(logger zerolog.Logger, sink Sink) *Notifier {
	return &Notifier{
		logger: logger.With().Str("component", "notifier").Logger(),
		sink:   sink,
	}
}

// Rejected reports an operation that failed and left state unchanged
func (n *Notifier) Rejected(action string, err error) {
	code := types.CodeOf(err)
	title := "Action failed"
	switch {
	case errors.Is(err, types.ErrNotFound):
		title = "Not found"
	case errors.Is(err, types.ErrInvalidTransition):
		title = "Action not allowed"
	case errors.Is(err, types.ErrDuplicateID):
		title = "Duplicate alert"
	case errors.Is(err, types.ErrOutOfRange):
		title = "Out of range"
	case errors.Is(err, types.ErrInvalid):
		title = "Invalid input"
	}

	n.logger.Warn().
		Err(err).
		Str("action", action).
		Str("code", string(code)).
		Msg("Operation rejected")

	n.send(Toast{
		Title:       fmt.Sprintf("%s: %s", title, action),
		Description: err.Error(),
		Variant:     VariantDestructive,
		Code:        code,
	})
}

// AlertRaised announces a newly ingested alert when it is high or critical
func (n *Notifier) AlertRaised(a types.Alert) {
	if a.Severity.Rank() < types.SeverityHigh.Rank() {
		return
	}
	n.send(Toast{
		Title:       formatTitle(a),
		Description: formatBody(a),
		Variant:     VariantDestructive,
	})
}

// BeaconChanged announces emergency beacon activation and cancellation
func (n *Notifier) BeaconChanged(state alerter.BeaconState) {
	switch {
	case state.Active && state.Recording:
		n.send(Toast{
			Title:       "🚨 SOS ACTIVATED",
			Description: "Emergency signal transmitted to command center. Help is on the way.",
			Variant:     VariantDestructive,
		})
	case !state.Active:
		n.send(Toast{
			Title:       "SOS Deactivated",
			Description: "Emergency signal cancelled.",
			Variant:     VariantDefault,
		})
	}
}

func (n *Notifier) send(t Toast) {
	if n.sink != nil {
		n.sink(t)
	}
}

// FormatAlert renders an alert as a plain-text message
func FormatAlert(a types.Alert) string {
	return fmt.Sprintf("%s\n\n%s", formatTitle(a), formatBody(a))
}

func formatTitle(a types.Alert) string {
	var emoji string
	switch a.Severity {
	case types.SeverityCritical:
		emoji = "🔴"
	case types.SeverityHigh:
		emoji = "⚠️"
	default:
		emoji = "ℹ️"
	}

	if a.Status == types.StatusResolved {
		emoji = "🟢"
	}

	return fmt.Sprintf("%s %s: %s", emoji, strings.ToUpper(string(a.Type)), a.Title)
}

func formatBody(a types.Alert) string {
	body := a.Description
	if body != "" {
		body += "\n\n"
	}
	body += fmt.Sprintf("Location: %s\nSource: %s\nSeverity: %s\nStatus: %s",
		a.Location, a.Source, a.Severity, a.Status)
	if !a.Timestamp.IsZero() {
		body += fmt.Sprintf("\nRaised at: %s", a.Timestamp.Format(time.RFC3339))
	}
	return body
}

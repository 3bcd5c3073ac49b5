package events

import (
	"time"
)

// EventType represents the type/severity of a Kubernetes Event.
type EventType string

const (
	// EventTypeNormal indicates normal, non-problematic events.
	EventTypeNormal EventType = "Normal"

	// EventTypeWarning indicates events that may require attention.
	EventTypeWarning EventType = "Warning"
)

// EventReason represents the reason code for an event.
type EventReason string

// Application event reasons
const (
	// ReasonApplicationReconciled indicates every resource of an application was applied.
	ReasonApplicationReconciled EventReason = "ApplicationReconciled"

	// ReasonApplicationPartiallyReconciled indicates some resource kinds failed to apply.
	ReasonApplicationPartiallyReconciled EventReason = "ApplicationPartiallyReconciled"

	// ReasonApplicationReconcileFailed indicates no resource kind could be applied.
	ReasonApplicationReconcileFailed EventReason = "ApplicationReconcileFailed"
)

// EventData holds contextual information for event message templating.
type EventData struct {
	// Name is the application name.
	Name string

	// Namespace is the application namespace the event is recorded in.
	Namespace string

	// Action is the lifecycle action that triggered the reconciliation.
	Action string

	// Image is the image tag the application was reconciled to.
	Image string

	// Failed lists the resource kinds that could not be applied.
	Failed string

	// Error contains error information for failure events.
	Error string

	// Duration is how long the reconciliation took.
	Duration time.Duration
}

// getEventType returns the appropriate EventType for a given EventReason.
func getEventType(reason EventReason) EventType {
	switch reason {
	case ReasonApplicationPartiallyReconciled,
		ReasonApplicationReconcileFailed:
		return EventTypeWarning
	default:
		return EventTypeNormal
	}
}

package lifecycle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Action is the lifecycle transition an event requests.
type Action string

const (
	// ActionCreate requests the application resources be created or replaced.
	ActionCreate Action = "Create"

	// ActionUpdate is handled exactly like ActionCreate.
	ActionUpdate Action = "Update"

	// ActionDelete requests removal of the application namespace.
	ActionDelete Action = "Delete"

	// ActionUnknown is any value that is not one of the above.
	ActionUnknown Action = "Unknown"
)

// CurrentVersion is the schema version written by Encode.
const CurrentVersion = "1"

// ParseAction matches s case-insensitively against the known actions.
func ParseAction(s string) Action {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "create":
		return ActionCreate
	case "update":
		return ActionUpdate
	case "delete":
		return ActionDelete
	default:
		return ActionUnknown
	}
}

// RequiresImage reports whether events with this action must carry an image.
func (a Action) RequiresImage() bool {
	return a == ActionCreate || a == ActionUpdate
}

// Application identifies the application an event refers to.
type Application struct {
	Name  string `json:"Name"`
	Image string `json:"Image,omitempty"`
}

// Event is a decoded application lifecycle event.
type Event struct {
	Action      Action      `json:"Action"`
	Version     string      `json:"Version,omitempty"`
	Application Application `json:"Data"`
}

// wireEvent keeps the raw action string so unknown values can be reported.
type wireEvent struct {
	Action  string      `json:"Action"`
	Version string      `json:"Version"`
	Data    Application `json:"Data"`
}

// MalformedEventError is returned for payloads that can never be reconciled.
type MalformedEventError struct {
	Reason string
	Err    error
}

func (e *MalformedEventError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed event: %s: %v", e.Reason, e.Err)
	}
	return "malformed event: " + e.Reason
}

func (e *MalformedEventError) Unwrap() error {
	return e.Err
}

// Malformed drop reasons, also used as metric label values.
const (
	ReasonUnparseable   = "unparseable"
	ReasonUnknownAction = "unknown_action"
	ReasonMissingName   = "missing_name"
	ReasonMissingImage  = "missing_image"
)

// IsMalformed reports whether err is, or wraps, a MalformedEventError.
func IsMalformed(err error) bool {
	var me *MalformedEventError
	return errors.As(err, &me)
}

// Decode parses and validates a raw transport payload.
func Decode(body []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(body, &w); err != nil {
		return Event{}, &MalformedEventError{Reason: ReasonUnparseable, Err: err}
	}

	ev := Event{
		Action:  ParseAction(w.Action),
		Version: w.Version,
		Application: Application{
			Name:  strings.TrimSpace(w.Data.Name),
			Image: strings.TrimSpace(w.Data.Image),
		},
	}
	if ev.Action == ActionUnknown && w.Action != "" {
		return ev, &MalformedEventError{Reason: ReasonUnknownAction, Err: fmt.Errorf("action %q", w.Action)}
	}
	if err := ev.Validate(); err != nil {
		return ev, err
	}
	return ev, nil
}

// Validate checks the fields required for the event's action.
func (e Event) Validate() error {
	if e.Action != ActionCreate && e.Action != ActionUpdate && e.Action != ActionDelete {
		return &MalformedEventError{Reason: ReasonUnknownAction, Err: fmt.Errorf("action %q", e.Action)}
	}
	if e.Application.Name == "" {
		return &MalformedEventError{Reason: ReasonMissingName}
	}
	if e.Action.RequiresImage() && e.Application.Image == "" {
		return &MalformedEventError{Reason: ReasonMissingImage}
	}
	return nil
}

// New builds an event with the current schema version.
func New(action Action, name, image string) Event {
	return Event{
		Action:      action,
		Version:     CurrentVersion,
		Application: Application{Name: name, Image: image},
	}
}

// Encode validates e and serialises it in the wire format.
func Encode(e Event) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.Version == "" {
		e.Version = CurrentVersion
	}
	return json.Marshal(e)
}

package schedule

import (
	"fmt"
	"strings"
)

// Shift identifies the half-day slot a commitment occupies. Values match the
// wire format used by the Go-Tree API.
type Shift string

const (
	// ShiftMorning covers commitments before noon.
	ShiftMorning Shift = "MANHA"
	// ShiftAfternoon covers commitments from noon onwards.
	ShiftAfternoon Shift = "TARDE"
)

// ParseShift converts external input into a Shift, accepting any casing.
func ParseShift(value string) (Shift, error) {
	switch Shift(strings.ToUpper(strings.TrimSpace(value))) {
	case ShiftMorning:
		return ShiftMorning, nil
	case ShiftAfternoon:
		return ShiftAfternoon, nil
	default:
		return "", fmt.Errorf("schedule: turno inválido %q", value)
	}
}

// Status tracks the lifecycle of an agenda entry.
type Status string

const (
	StatusToConfirm   Status = "A_CONFIRMAR"
	StatusConfirmed   Status = "CONFIRMADO"
	StatusCancelled   Status = "CANCELADO"
	StatusRescheduled Status = "REAGENDADO"
)

// Descricao returns the human-readable label rendered in agendas and reports.
func (s Status) Descricao() string {
	switch s {
	case StatusToConfirm:
		return "À Confirmar"
	case StatusConfirmed:
		return "Confirmado"
	case StatusCancelled:
		return "Cancelado"
	case StatusRescheduled:
		return "Reagendado"
	default:
		return string(s)
	}
}

// Active reports whether the entry still occupies its slot. Cancelled and
// rescheduled entries are historical and never block new bookings.
func (s Status) Active() bool {
	return s != StatusCancelled && s != StatusRescheduled
}

// ParseStatus converts external input into a Status, accepting any casing.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(value))) {
	case StatusToConfirm:
		return StatusToConfirm, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusRescheduled:
		return StatusRescheduled, nil
	default:
		return "", fmt.Errorf("schedule: status inválido %q", value)
	}
}

// EventType describes the nature of an agenda entry.
type EventType string

const (
	EventMeeting     EventType = "REUNIAO"
	EventIntegration EventType = "INTEGRACAO"
	// EventTechnicalVisit marks both reschedule trails and the virtual
	// entries projected from a visit's next-visit slot.
	EventTechnicalVisit EventType = "VISITA_TECNICA"
	EventOther          EventType = "OUTRO"
)

// ParseEventType converts external input into an EventType, accepting any
// casing.
func ParseEventType(value string) (EventType, error) {
	switch EventType(strings.ToUpper(strings.TrimSpace(value))) {
	case EventMeeting:
		return EventMeeting, nil
	case EventIntegration:
		return EventIntegration, nil
	case EventTechnicalVisit:
		return EventTechnicalVisit, nil
	case EventOther:
		return EventOther, nil
	default:
		return "", fmt.Errorf("schedule: tipo de evento inválido %q", value)
	}
}

package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

// Envelope — плоское JSON-представление уведомления для Redis и admin API.
// Заполняются только поля, нужные форме вида.
type Envelope struct {
	Kind        string          `json:"kind"`
	Participant *uint           `json:"participant,omitempty"`
	Domain      *uint           `json:"domain,omitempty"`
	Value       *uint32         `json:"value,omitempty"`
	Count       *uint           `json:"count,omitempty"`
	Text        *string         `json:"text,omitempty"`
	On          *bool           `json:"on,omitempty"`
	DurationMs  *int64          `json:"duration_ms,omitempty"`
	Percentage  *float64        `json:"percentage,omitempty"`
	Code        *uint64         `json:"code,omitempty"`
	Param       *uint64         `json:"param,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	Type        *uint32         `json:"type,omitempty"`
}

// Decode разбирает JSON-конверт в проверенное уведомление.
func Decode(raw []byte) (Notification, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Notification{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env.Notification()
}

// Notification собирает уведомление из конверта по форме, указанной в каталоге.
func (e Envelope) Notification() (Notification, error) {
	k, err := ParseKind(e.Kind)
	if err != nil {
		return Notification{}, err
	}
	d, _ := Describe(k)

	var p Payload
	switch d.Shape {
	case ShapeNone:
		p = Empty{}
	case ShapeParticipant:
		if e.Participant == nil {
			return Notification{}, missing(d, "participant")
		}
		p = Participant{Participant: *e.Participant}
	case ShapeParticipantDomain:
		if e.Participant == nil || e.Domain == nil {
			return Notification{}, missing(d, "participant/domain")
		}
		p = ParticipantDomain{Participant: *e.Participant, Domain: *e.Domain}
	case ShapeParticipantValue:
		if e.Participant == nil || e.Value == nil {
			return Notification{}, missing(d, "participant/value")
		}
		p = ParticipantValue{Participant: *e.Participant, Value: *e.Value}
	case ShapeDomainValue:
		if e.Participant == nil || e.Domain == nil || e.Value == nil {
			return Notification{}, missing(d, "participant/domain/value")
		}
		p = DomainValue{Participant: *e.Participant, Domain: *e.Domain, Value: *e.Value}
	case ShapeEnum:
		if e.Value == nil {
			return Notification{}, missing(d, "value")
		}
		p = Enum{Value: *e.Value}
	case ShapeCount:
		if e.Count == nil {
			return Notification{}, missing(d, "count")
		}
		p = Count{Value: *e.Count}
	case ShapeText:
		if e.Text == nil {
			return Notification{}, missing(d, "text")
		}
		p = Text{Value: *e.Text}
	case ShapeToggle:
		if e.On == nil {
			return Notification{}, missing(d, "on")
		}
		p = Toggle{On: *e.On}
	case ShapeDuration:
		if e.DurationMs == nil {
			return Notification{}, missing(d, "duration_ms")
		}
		p = Duration{Value: time.Duration(*e.DurationMs) * time.Millisecond}
	case ShapePercentage:
		if e.Percentage == nil {
			return Notification{}, missing(d, "percentage")
		}
		p = Percentage{Value: *e.Percentage}
	case ShapeCallback:
		if e.Code == nil {
			return Notification{}, missing(d, "code")
		}
		cb := Callback{Code: *e.Code}
		if e.Param != nil {
			cb.Param = *e.Param
		}
		if len(e.Data) > 0 {
			cb.Data = e.Data
		}
		p = cb
	case ShapeMobile:
		if e.Type == nil || e.Count == nil {
			return Notification{}, missing(d, "type/count")
		}
		p = Mobile{Type: *e.Type, Value: *e.Count}
	}
	return New(k, p)
}

func missing(d Descriptor, field string) error {
	return fmt.Errorf("%w: %s requires %s", domain.ErrPayloadMismatch, d.Name, field)
}

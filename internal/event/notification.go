package event

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

// Notification — одно уведомление платформы: вид и полезная нагрузка.
type Notification struct {
	Kind    Kind
	Payload Payload
}

// New собирает уведомление и сразу проверяет форму нагрузки по каталогу.
func New(k Kind, p Payload) (Notification, error) {
	n := Notification{Kind: k, Payload: p}
	if err := n.Validate(); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// MustNew — вариант New для статически известных уведомлений.
func MustNew(k Kind, p Payload) Notification {
	n, err := New(k, p)
	if err != nil {
		panic(err)
	}
	return n
}

// Validate сверяет вид с каталогом и форму нагрузки с дескриптором.
// Отсутствующая нагрузка допустима только для ShapeNone.
func (n Notification) Validate() error {
	d, ok := Describe(n.Kind)
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrUnknownKind, uint16(n.Kind))
	}
	got := ShapeNone
	if n.Payload != nil {
		got = n.Payload.Shape()
	}
	if got != d.Shape {
		return fmt.Errorf("%w: %s expects %s, got %s", domain.ErrPayloadMismatch, d.Name, d.Shape, got)
	}
	return nil
}

// Message — сообщение для лога из дескриптора.
func (n Notification) Message() string {
	d, ok := Describe(n.Kind)
	if !ok {
		return "Unknown notification received"
	}
	return d.Message
}

// Fields — поля для лога: вид, поля нагрузки и имя значения перечисления, если оно известно.
func (n Notification) Fields() []zap.Field {
	fields := []zap.Field{zap.Stringer("kind", n.Kind)}
	if n.Payload == nil {
		return fields
	}
	fields = append(fields, n.Payload.Fields()...)

	var value uint32
	switch p := n.Payload.(type) {
	case Enum:
		value = p.Value
	case ParticipantValue:
		value = p.Value
	case DomainValue:
		value = p.Value
	default:
		return fields
	}
	if name := ValueName(n.Kind, value); name != "" {
		fields = append(fields, zap.String("value_name", name))
	}
	return fields
}

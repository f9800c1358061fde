package event

import (
	"math"
	"time"

	"go.uber.org/zap"
)

// Payload — закрытая сумма типов полезной нагрузки. Реализации есть только в этом пакете.
type Payload interface {
	Shape() Shape
	// Fields — поля для структурного лога диспетчера.
	Fields() []zap.Field
	sealed()
}

// Empty — уведомление без данных.
type Empty struct{}

// Participant — уведомление об участнике.
type Participant struct {
	Participant uint
}

// ParticipantDomain — участник и его домен.
type ParticipantDomain struct {
	Participant uint
	Domain      uint
}

// ParticipantValue — участник и значение перечисления (статус радио).
type ParticipantValue struct {
	Participant uint
	Value       uint32
}

// DomainValue — участник, домен и значение перечисления (классификация нагрузки SoC).
type DomainValue struct {
	Participant uint
	Domain      uint
	Value       uint32
}

// Enum — одно значение перечисления.
type Enum struct {
	Value uint32
}

// Count — целое без знака (процент батареи, количество батарей).
type Count struct {
	Value uint
}

// Text — строка (имя приложения переднего плана).
type Text struct {
	Value string
}

// Toggle — состояние функции вкл/выкл.
type Toggle struct {
	On bool
}

// Duration — интервал ожидания или таймаут.
type Duration struct {
	Value time.Duration
}

// Percentage — доля в диапазоне [0, 1].
type Percentage struct {
	Value float64
}

// WholeNumber возвращает процент целым числом, как его показывает платформа.
func (p Percentage) WholeNumber() uint {
	if p.Value <= 0 {
		return 0
	}
	return uint(math.Round(p.Value * 100))
}

// Callback — инициированный политикой обратный вызов. Data передаётся модулю как есть.
type Callback struct {
	Code  uint64
	Param uint64
	Data  any
}

// Mobile — мобильное уведомление ОС: тип и значение.
type Mobile struct {
	Type  uint32
	Value uint
}

func (Empty) Shape() Shape             { return ShapeNone }
func (Participant) Shape() Shape       { return ShapeParticipant }
func (ParticipantDomain) Shape() Shape { return ShapeParticipantDomain }
func (ParticipantValue) Shape() Shape  { return ShapeParticipantValue }
func (DomainValue) Shape() Shape       { return ShapeDomainValue }
func (Enum) Shape() Shape              { return ShapeEnum }
func (Count) Shape() Shape             { return ShapeCount }
func (Text) Shape() Shape              { return ShapeText }
func (Toggle) Shape() Shape            { return ShapeToggle }
func (Duration) Shape() Shape          { return ShapeDuration }
func (Percentage) Shape() Shape        { return ShapePercentage }
func (Callback) Shape() Shape          { return ShapeCallback }
func (Mobile) Shape() Shape            { return ShapeMobile }

func (Empty) Fields() []zap.Field { return nil }

func (p Participant) Fields() []zap.Field {
	return []zap.Field{zap.Uint("participant", p.Participant)}
}

func (p ParticipantDomain) Fields() []zap.Field {
	return []zap.Field{zap.Uint("participant", p.Participant), zap.Uint("domain", p.Domain)}
}

func (p ParticipantValue) Fields() []zap.Field {
	return []zap.Field{zap.Uint("participant", p.Participant), zap.Uint32("value", p.Value)}
}

func (p DomainValue) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint("participant", p.Participant),
		zap.Uint("domain", p.Domain),
		zap.Uint32("value", p.Value),
	}
}

func (p Enum) Fields() []zap.Field  { return []zap.Field{zap.Uint32("value", p.Value)} }
func (p Count) Fields() []zap.Field { return []zap.Field{zap.Uint("value", p.Value)} }
func (p Text) Fields() []zap.Field  { return []zap.Field{zap.String("value", p.Value)} }
func (p Toggle) Fields() []zap.Field {
	return []zap.Field{zap.Bool("on", p.On)}
}

func (p Duration) Fields() []zap.Field {
	return []zap.Field{zap.Duration("value", p.Value)}
}

func (p Percentage) Fields() []zap.Field {
	return []zap.Field{zap.Uint("percent", p.WholeNumber())}
}

func (p Callback) Fields() []zap.Field {
	return []zap.Field{zap.Uint64("code", p.Code), zap.Uint64("param", p.Param)}
}

func (p Mobile) Fields() []zap.Field {
	return []zap.Field{
		zap.String("type", lookup(mobileNotificationTypeValues, p.Type)),
		zap.Uint("value", p.Value),
	}
}

func (Empty) sealed()             {}
func (Participant) sealed()       {}
func (ParticipantDomain) sealed() {}
func (ParticipantValue) sealed()  {}
func (DomainValue) sealed()       {}
func (Enum) sealed()              {}
func (Count) sealed()             {}
func (Text) sealed()              {}
func (Toggle) sealed()            {}
func (Duration) sealed()          {}
func (Percentage) sealed()        {}
func (Callback) sealed()          {}
func (Mobile) sealed()            {}

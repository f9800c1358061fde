package negotiation

import (
	"context"

	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/connectors"
	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

// Capabilities — то, что модуль заявляет прямо сейчас. Опрашивается при каждом расчёте.
type Capabilities interface {
	HasActiveControlCapability() bool
	HasPassiveControlCapability() bool
	HasCriticalShutdownCapability() bool
}

// Observer получает итог каждой попытки переговоров (метрики).
type Observer interface {
	ObserveNegotiation(policy string, grant bool, err error)
}

// Negotiator ведёт переговоры одной политики с платформой.
// Блокировок нет: вызывающий код (менеджер) сериализует доступ.
type Negotiator struct {
	id       domain.PolicyIdentity
	caps     Capabilities
	channel  connectors.Channel
	observer Observer
	logger   *zap.Logger

	state    domain.NegotiationState
	lastWord uint32
}

func NewNegotiator(id domain.PolicyIdentity, caps Capabilities, channel connectors.Channel, observer Observer, logger *zap.Logger) *Negotiator {
	return &Negotiator{
		id:       id,
		caps:     caps,
		channel:  channel,
		observer: observer,
		logger:   logger.Named("negotiator"),
	}
}

// Claim опрашивает модуль и собирает текущую заявку.
func (n *Negotiator) Claim() domain.CapabilityClaim {
	return domain.CapabilityClaim{
		Active:           n.caps.HasActiveControlCapability(),
		Passive:          n.caps.HasPassiveControlCapability(),
		CriticalShutdown: n.caps.HasCriticalShutdownCapability(),
	}
}

// Grant заявляет текущие capability.
func (n *Negotiator) Grant(ctx context.Context) {
	n.Negotiate(ctx, n.Claim(), true)
}

// Withdraw отзывает разрешение (POLICY_DISABLED).
func (n *Negotiator) Withdraw(ctx context.Context) {
	n.Negotiate(ctx, n.Claim(), false)
}

// Negotiate отправляет capability word на канале. Ошибка канала логируется и не возвращается.
// Отзыв всегда снимает флаг Enabled, даже если платформа запрос не приняла.
func (n *Negotiator) Negotiate(ctx context.Context, claim domain.CapabilityClaim, grant bool) {
	word := claim.Word(grant)
	req := connectors.Request{Tag: connectors.TagSetOsc, Policy: n.id.Index, Word: word}

	res, err := n.channel.Submit(ctx, req)
	if n.observer != nil {
		n.observer.ObserveNegotiation(n.id.Name, grant, err)
	}

	if !grant {
		n.state.Enabled = false
	}
	if err != nil {
		cerr := &connectors.ChannelError{Tag: req.Tag, Policy: n.id.Index, Cause: err}
		n.logger.Warn("Capability negotiation failed",
			zap.Uint32("word", word),
			zap.Bool("grant", grant),
			zap.Error(cerr),
		)
		return
	}

	n.lastWord = word
	if grant {
		granted := claim
		n.state.LastGranted = &granted
		n.state.Enabled = true
	}
	n.logger.Info("Capability word submitted",
		zap.Uint32("word", word),
		zap.Bool("grant", grant),
		zap.String("platform_message", res.Message),
	)
}

// ForceDisabled снимает флаг Enabled без обращения к платформе.
// Disable и Destroy вызывают его всегда, даже если отзыв отключён настройками модуля.
func (n *Negotiator) ForceDisabled() {
	n.state.Enabled = false
}

// ReconcileIfChanged перезаявляет capability ровно один раз, если заявка изменилась.
func (n *Negotiator) ReconcileIfChanged(ctx context.Context, previous domain.CapabilityClaim, enabledAndAutoNotify bool) bool {
	if !enabledAndAutoNotify {
		return false
	}
	current := n.Claim()
	if current == previous {
		return false
	}
	n.logger.Info("Capabilities changed, renegotiating",
		zap.Any("previous", previous),
		zap.Any("current", current),
	)
	n.Negotiate(ctx, current, true)
	return true
}

// State — последнее выданное разрешение.
func (n *Negotiator) State() domain.NegotiationState {
	return n.state
}

// LastWord — последний принятый платформой capability word.
func (n *Negotiator) LastWord() uint32 {
	return n.lastWord
}

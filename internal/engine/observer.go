package engine

import (
	"strconv"

	"github.com/xela07ax/thermal-policy-host/internal/audit"
	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/event"
)

var lifecycleStates = []domain.LifecycleState{
	domain.StateUnloaded, domain.StateCreated, domain.StateEnabled, domain.StateDisabled, domain.StateDestroyed,
}

// Observer раздаёт события хостов в метрики и журнал. Реализует host.Observer.
type Observer struct {
	metrics *Metrics
	journal audit.Recorder // может быть nil
}

func NewObserver(metrics *Metrics, journal audit.Recorder) *Observer {
	return &Observer{metrics: metrics, journal: journal}
}

func (o *Observer) ObserveNegotiation(policy string, grant bool, err error) {
	o.metrics.NegotiationTotal.WithLabelValues(policy, strconv.FormatBool(grant), result(err)).Inc()
	if err != nil {
		o.metrics.ErrorTotal.WithLabelValues("negotiation").Inc()
	}
	o.record(audit.Entry{
		Policy:   policy,
		Category: audit.CategoryNegotiation,
		Action:   negotiationAction(grant),
		Status:   auditStatus(err),
		Error:    errString(err),
	})
}

func (o *Observer) ObserveTransition(id domain.PolicyIdentity, t domain.Transition, from, to domain.LifecycleState, err error) {
	o.metrics.TransitionTotal.WithLabelValues(id.Name, string(t), result(err)).Inc()
	if err != nil {
		o.metrics.ErrorTotal.WithLabelValues("hook").Inc()
	}
	for _, s := range lifecycleStates {
		v := 0.0
		if s == to {
			v = 1
		}
		o.metrics.PolicyState.WithLabelValues(id.Name, string(s)).Set(v)
	}
	o.record(audit.Entry{
		Policy:      id.Name,
		PolicyIndex: id.Index,
		Category:    audit.CategoryTransition,
		Action:      string(t),
		Detail:      map[string]interface{}{"from": string(from), "to": string(to)},
		Status:      auditStatus(err),
		Error:       errString(err),
	})
}

func (o *Observer) ObserveDispatch(id domain.PolicyIdentity, kind event.Kind, outcome event.Outcome, err error) {
	o.metrics.DispatchTotal.WithLabelValues(id.Name, kind.String(), outcome.String()).Inc()
	if err != nil {
		o.metrics.ErrorTotal.WithLabelValues("handler").Inc()
	}
	// В журнал попадают только реально обработанные уведомления и ошибки
	if outcome == event.OutcomeNotApplicable && err == nil {
		return
	}
	o.record(audit.Entry{
		Policy:      id.Name,
		PolicyIndex: id.Index,
		Category:    audit.CategoryDispatch,
		Action:      kind.String(),
		Detail:      map[string]interface{}{"outcome": outcome.String()},
		Status:      auditStatus(err),
		Error:       errString(err),
	})
}

func (o *Observer) record(e audit.Entry) {
	if o.journal != nil {
		o.journal.Record(e)
	}
}

func negotiationAction(grant bool) string {
	if grant {
		return "grant"
	}
	return "withdraw"
}

func result(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}

func auditStatus(err error) string {
	if err != nil {
		return audit.StatusFailed
	}
	return audit.StatusSuccess
}

func errString(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}

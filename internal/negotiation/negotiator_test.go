package negotiation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xela07ax/thermal-policy-host/internal/connectors"
	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

type caps struct{ active, passive, critical bool }

func (c *caps) HasActiveControlCapability() bool    { return c.active }
func (c *caps) HasPassiveControlCapability() bool   { return c.passive }
func (c *caps) HasCriticalShutdownCapability() bool { return c.critical }

type recorder struct {
	grants []bool
	errs   []error
}

func (r *recorder) ObserveNegotiation(_ string, grant bool, err error) {
	r.grants = append(r.grants, grant)
	r.errs = append(r.errs, err)
}

func newTestNegotiator(c *caps, ch connectors.Channel) (*Negotiator, *recorder, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	rec := &recorder{}
	id := domain.PolicyIdentity{Index: 4, Name: "critical"}
	return NewNegotiator(id, c, ch, rec, zap.New(core)), rec, logs
}

func TestNegotiateGrantAndWithdraw(t *testing.T) {
	ch := &connectors.LoopbackChannel{}
	n, rec, _ := newTestNegotiator(&caps{active: true, critical: true}, ch)
	ctx := context.Background()

	n.Grant(ctx)
	n.Withdraw(ctx)

	reqs := ch.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, connectors.Request{Tag: connectors.TagSetOsc, Policy: 4, Word: 0b1011}, reqs[0])
	assert.Equal(t, uint32(0), reqs[1].Word)
	assert.Equal(t, []bool{true, false}, rec.grants)

	st := n.State()
	assert.False(t, st.Enabled)
	require.NotNil(t, st.LastGranted)
	assert.Equal(t, domain.CapabilityClaim{Active: true, CriticalShutdown: true}, *st.LastGranted)
	assert.Equal(t, uint32(0), n.LastWord())
}

func TestNegotiateSwallowsChannelFailure(t *testing.T) {
	boom := errors.New("platform down")
	ch := &connectors.LoopbackChannel{Fail: func(connectors.Request) error { return boom }}
	n, rec, logs := newTestNegotiator(&caps{passive: true}, ch)

	assert.NotPanics(t, func() { n.Grant(context.Background()) })

	assert.False(t, n.State().Enabled)
	assert.Nil(t, n.State().LastGranted)
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0], boom)

	warn := logs.FilterMessage("Capability negotiation failed").All()
	require.Len(t, warn, 1)
	assert.Equal(t, zap.WarnLevel, warn[0].Level)

	var logged error
	for _, f := range warn[0].Context {
		if f.Key == "error" {
			logged, _ = f.Interface.(error)
		}
	}
	var cerr *connectors.ChannelError
	require.ErrorAs(t, logged, &cerr)
	assert.Equal(t, connectors.TagSetOsc, cerr.Tag)
	assert.Equal(t, uint(4), cerr.Policy)
}

func TestWithdrawForcesDisabledOnFailure(t *testing.T) {
	fail := false
	ch := &connectors.LoopbackChannel{Fail: func(connectors.Request) error {
		if fail {
			return errors.New("rejected")
		}
		return nil
	}}
	n, _, _ := newTestNegotiator(&caps{passive: true}, ch)

	n.Grant(context.Background())
	require.True(t, n.State().Enabled)

	fail = true
	n.Withdraw(context.Background())
	assert.False(t, n.State().Enabled)
}

func TestReconcileIfChanged(t *testing.T) {
	c := &caps{passive: true}
	ch := &connectors.LoopbackChannel{}
	n, _, _ := newTestNegotiator(c, ch)
	ctx := context.Background()

	before := n.Claim()
	assert.False(t, n.ReconcileIfChanged(ctx, before, true), "unchanged claim")
	assert.Empty(t, ch.Requests())

	c.active = true
	assert.False(t, n.ReconcileIfChanged(ctx, before, false), "auto-notify off")
	assert.Empty(t, ch.Requests())

	assert.True(t, n.ReconcileIfChanged(ctx, before, true))
	assert.Equal(t, []uint32{0b0111}, ch.Words())
}

func TestGrantWithPlatformMessageSucceeds(t *testing.T) {
	ch := &connectors.LoopbackChannel{Message: "OSC set"}
	n, rec, logs := newTestNegotiator(&caps{passive: true}, ch)

	n.Grant(context.Background())

	require.Len(t, rec.errs, 1)
	assert.NoError(t, rec.errs[0])
	st := n.State()
	assert.True(t, st.Enabled)
	require.NotNil(t, st.LastGranted)
	assert.Equal(t, uint32(0b0101), n.LastWord())
	assert.Empty(t, logs.FilterMessage("Capability negotiation failed").All())

	ok := logs.FilterMessage("Capability word submitted").All()
	require.Len(t, ok, 1)
	assert.Equal(t, "OSC set", ok[0].ContextMap()["platform_message"])
}

func TestForceDisabled(t *testing.T) {
	ch := &connectors.LoopbackChannel{}
	n, _, _ := newTestNegotiator(&caps{passive: true}, ch)

	n.Grant(context.Background())
	require.True(t, n.State().Enabled)

	n.ForceDisabled()
	assert.False(t, n.State().Enabled)
	assert.NotNil(t, n.State().LastGranted)
	assert.Len(t, ch.Requests(), 1)
}

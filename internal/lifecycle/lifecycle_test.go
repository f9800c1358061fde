package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/connectors"
	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/negotiation"
	"github.com/xela07ax/thermal-policy-host/internal/policy"
	"github.com/xela07ax/thermal-policy-host/internal/policy/policytest"
)

type transition struct {
	t        domain.Transition
	from, to domain.LifecycleState
	failed   bool
}

type recorder struct{ seen []transition }

func (r *recorder) ObserveTransition(_ domain.PolicyIdentity, t domain.Transition, from, to domain.LifecycleState, err error) {
	r.seen = append(r.seen, transition{t, from, to, err != nil})
}

type fixture struct {
	module  *policytest.Module
	channel *connectors.LoopbackChannel
	rec     *recorder
	neg     *negotiation.Negotiator
	lc      *PolicyLifecycle
	svc     policy.Services
}

func newFixture(t *testing.T, configure func(*policytest.Module)) *fixture {
	t.Helper()
	m := policytest.New("passive")
	m.Passive = true
	if configure != nil {
		configure(m)
	}
	ch := &connectors.LoopbackChannel{}
	id := domain.PolicyIdentity{Index: 1, Name: m.Name}
	neg := negotiation.NewNegotiator(id, m, ch, nil, zap.NewNop())
	rec := &recorder{}
	return &fixture{
		module:  m,
		channel: ch,
		rec:     rec,
		neg:     neg,
		lc:      New(id, m, neg, rec, zap.NewNop()),
		svc:     policy.Services{ConfigData: policy.StaticConfig{}, Requests: ch},
	}
}

func TestCreateThenEnable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.lc.Create(ctx, false, f.svc))
	assert.Equal(t, domain.StateCreated, f.lc.State())
	assert.Empty(t, f.channel.Words(), "no negotiation without enabledAtStart")

	require.NoError(t, f.lc.Enable(ctx))
	assert.Equal(t, domain.StateEnabled, f.lc.State())
	assert.Equal(t, []uint32{0b0101}, f.channel.Words())
	assert.Equal(t, []string{"create", "enable"}, f.module.Calls)
	assert.NoError(t, f.lc.AssertEnabled())

	assert.Equal(t, []transition{
		{domain.TransitionCreate, domain.StateUnloaded, domain.StateCreated, false},
		{domain.TransitionEnable, domain.StateCreated, domain.StateEnabled, false},
	}, f.rec.seen)
}

func TestCreateEnabledAtStartGrants(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.lc.Create(context.Background(), true, f.svc))
	assert.Equal(t, domain.StateEnabled, f.lc.State())
	assert.Equal(t, []uint32{0b0101}, f.channel.Words())
	assert.Equal(t, []string{"create"}, f.module.Calls)
}

func TestCreateWithoutConfigData(t *testing.T) {
	f := newFixture(t, nil)

	err := f.lc.Create(context.Background(), true, policy.Services{})
	require.ErrorIs(t, err, domain.ErrMissingRequiredService)
	assert.Equal(t, domain.StateUnloaded, f.lc.State())
	assert.Empty(t, f.module.Calls)
	assert.Empty(t, f.channel.Words())
}

func TestCreateHookFailureWithdrawsAndAllowsDestroy(t *testing.T) {
	boom := errors.New("no tables")
	f := newFixture(t, func(m *policytest.Module) { m.CreateErr = boom })
	ctx := context.Background()

	err := f.lc.Create(ctx, true, f.svc)
	require.ErrorIs(t, err, boom)
	var hookErr *domain.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, domain.TransitionCreate, hookErr.Hook)
	assert.Equal(t, domain.StateUnloaded, f.lc.State())
	assert.Equal(t, []uint32{0}, f.channel.Words())

	require.NoError(t, f.lc.Destroy(ctx))
	assert.Equal(t, domain.StateDestroyed, f.lc.State())
	assert.Equal(t, []string{"create"}, f.module.Calls, "destroy hook skipped after failed create")
	assert.Equal(t, []uint32{0}, f.channel.Words())
}

func TestEnableHookFailureWithdraws(t *testing.T) {
	boom := errors.New("enable failed")
	f := newFixture(t, func(m *policytest.Module) { m.EnableErr = boom })
	ctx := context.Background()
	require.NoError(t, f.lc.Create(ctx, false, f.svc))

	err := f.lc.Enable(ctx)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, domain.StateCreated, f.lc.State())
	assert.Equal(t, []uint32{0b0101, 0}, f.channel.Words(), "grant precedes hook, withdraw follows failure")
}

func TestDisableHookFailureStillWithdraws(t *testing.T) {
	boom := errors.New("disable failed")
	f := newFixture(t, func(m *policytest.Module) { m.DisableErr = boom })
	ctx := context.Background()
	require.NoError(t, f.lc.Create(ctx, true, f.svc))
	f.channel.Reset()

	err := f.lc.Disable(ctx)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, domain.StateDisabled, f.lc.State())
	assert.Equal(t, []uint32{0}, f.channel.Words())
	assert.ErrorIs(t, f.lc.AssertEnabled(), domain.ErrPolicyDisabled)
}

func TestDisableTwice(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.lc.Create(ctx, true, f.svc))
	require.NoError(t, f.lc.Disable(ctx))
	f.channel.Reset()
	f.module.Reset()
	observed := len(f.rec.seen)

	err := f.lc.Disable(ctx)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.StateDisabled, f.lc.State())
	assert.Empty(t, f.channel.Words())
	assert.Empty(t, f.module.Calls)
	assert.Len(t, f.rec.seen, observed)
}

func TestDestroyAlwaysEndsDestroyed(t *testing.T) {
	boom := errors.New("destroy failed")
	f := newFixture(t, func(m *policytest.Module) { m.DestroyErr = boom })
	f.channel.Fail = func(connectors.Request) error { return errors.New("channel down") }
	ctx := context.Background()
	require.NoError(t, f.lc.Create(ctx, true, f.svc))

	err := f.lc.Destroy(ctx)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, domain.StateDestroyed, f.lc.State())
	assert.False(t, f.lc.Enabled())

	assert.ErrorIs(t, f.lc.Destroy(ctx), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.lc.Enable(ctx), domain.ErrInvalidTransition)
}

func TestAutoNotifyOff(t *testing.T) {
	f := newFixture(t, func(m *policytest.Module) {
		m.Prefs = policy.Preferences{}
	})
	ctx := context.Background()

	require.NoError(t, f.lc.Create(ctx, true, f.svc))
	require.NoError(t, f.lc.Disable(ctx))
	require.NoError(t, f.lc.Enable(ctx))
	require.NoError(t, f.lc.Destroy(ctx))
	assert.Empty(t, f.channel.Words())
}

func TestSplitPreferencesAlwaysClearGrant(t *testing.T) {
	cases := []struct {
		name  string
		prefs policy.Preferences
		last  domain.Transition
		words []uint32
	}{
		{"destroy without create-destroy notify", policy.Preferences{OnEnableDisable: true}, domain.TransitionDestroy, []uint32{0b0101}},
		{"disable without enable-disable notify", policy.Preferences{OnCreateDestroy: true}, domain.TransitionDisable, []uint32{0b0101}},
		{"destroy with create-destroy notify", policy.Preferences{OnCreateDestroy: true}, domain.TransitionDestroy, []uint32{0b0101, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, func(m *policytest.Module) { m.Prefs = tc.prefs })
			ctx := context.Background()

			// Разрешение выдаётся тем переходом, который разрешён настройками
			if tc.prefs.OnCreateDestroy {
				require.NoError(t, f.lc.Create(ctx, true, f.svc))
			} else {
				require.NoError(t, f.lc.Create(ctx, false, f.svc))
				require.NoError(t, f.lc.Enable(ctx))
			}
			require.True(t, f.neg.State().Enabled)

			if tc.last == domain.TransitionDisable {
				require.NoError(t, f.lc.Disable(ctx))
			} else {
				require.NoError(t, f.lc.Destroy(ctx))
			}
			assert.False(t, f.neg.State().Enabled)
			assert.Equal(t, tc.words, f.channel.Words())
		})
	}
}

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/event"
)

// fakeRedis реализует только команды, которые вызывают Intake и ControlListener.
type fakeRedis struct {
	redis.Cmdable
	locked  bool
	lockErr error
	members []string
	ops     []string
}

func (r *fakeRedis) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	if r.lockErr != nil {
		return redis.NewBoolResult(false, r.lockErr)
	}
	r.ops = append(r.ops, "setnx "+key)
	return redis.NewBoolResult(!r.locked, nil)
}

func (r *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	r.ops = append(r.ops, "del "+keys[0])
	return redis.NewIntResult(1, nil)
}

func (r *fakeRedis) SMembers(context.Context, string) *redis.StringSliceCmd {
	return redis.NewStringSliceResult(r.members, nil)
}

func (r *fakeRedis) TxPipeline() redis.Pipeliner { return &fakePipe{owner: r} }

type fakePipe struct {
	redis.Pipeliner
	owner *fakeRedis
	ops   []string
}

func (p *fakePipe) Del(_ context.Context, keys ...string) *redis.IntCmd {
	p.ops = append(p.ops, "tx:del "+keys[0])
	return redis.NewIntResult(1, nil)
}

func (p *fakePipe) SAdd(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	p.ops = append(p.ops, "tx:sadd "+key+" "+members[0].(string))
	return redis.NewIntResult(1, nil)
}

func (p *fakePipe) Exec(context.Context) ([]redis.Cmder, error) {
	p.owner.ops = append(p.owner.ops, p.ops...)
	return nil, nil
}

type fakeDispatcher struct {
	got   []event.Notification
	kinds []event.Kind
	err   error
}

func (d *fakeDispatcher) Dispatch(_ context.Context, n event.Notification) (Report, error) {
	d.got = append(d.got, n)
	return Report{Kind: n.Kind}, d.err
}

func (d *fakeDispatcher) PlatformKinds() []event.Kind { return d.kinds }

func newTestIntake(rdb *fakeRedis, d *fakeDispatcher, m *Metrics) *Intake {
	return NewIntake(rdb, d, IntakeConfig{Channel: "notes", KindsKey: "kinds", LockKey: "lock"}, m, zap.NewNop())
}

func TestIntakeHandle(t *testing.T) {
	d := &fakeDispatcher{}
	m := NewMetrics(prometheus.NewRegistry())
	in := newTestIntake(&fakeRedis{}, d, m)
	ctx := context.Background()

	in.Handle(ctx, []byte(`{"kind":"PolicyOperatingSystemLidStateChanged","value":1}`))
	require.Len(t, d.got, 1)
	assert.Equal(t, event.MustNew(event.KindPolicyOperatingSystemLidStateChanged, event.Enum{Value: 1}), d.got[0])

	in.Handle(ctx, []byte(`{"kind":"PolicyOperatingSystemLidStateChanged"}`))
	in.Handle(ctx, []byte(`garbage`))
	assert.Len(t, d.got, 1, "malformed envelopes never reach policies")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ErrorTotal.WithLabelValues("decode")))
}

func TestIntakeSync(t *testing.T) {
	rdb := &fakeRedis{}
	d := &fakeDispatcher{kinds: []event.Kind{event.KindSuspend, event.KindPolicyPassiveTableChanged}}
	in := newTestIntake(rdb, d, nil)

	require.NoError(t, in.Sync(context.Background()))
	assert.Equal(t, []string{
		"setnx lock",
		"tx:del kinds",
		"tx:sadd kinds Suspend",
		"tx:sadd kinds PolicyPassiveTableChanged",
		"del lock",
	}, rdb.ops)
}

func TestSyncStateSkipsWhenLocked(t *testing.T) {
	rdb := &fakeRedis{locked: true}
	require.NoError(t, SyncState(context.Background(), rdb, zap.NewNop(), []string{"a"}, "kinds", "lock"))
	assert.Equal(t, []string{"setnx lock"}, rdb.ops)

	rdb = &fakeRedis{lockErr: errors.New("timeout")}
	assert.Error(t, SyncState(context.Background(), rdb, zap.NewNop(), []string{"a"}, "kinds", "lock"))
}

type fakeSwitch struct {
	calls map[string]bool
}

func (s *fakeSwitch) SetEnabled(_ context.Context, key string, enabled bool) error {
	if key == "ghost" {
		return domain.ErrPolicyNotFound
	}
	s.calls[key] = enabled
	return nil
}

func TestControlListenerInit(t *testing.T) {
	sw := &fakeSwitch{calls: map[string]bool{}}
	c := NewControlListener(&fakeRedis{members: []string{"passive", "ghost"}}, sw, "ctl", "disabled", zap.NewNop())

	require.NoError(t, c.Init(context.Background()))
	assert.Equal(t, map[string]bool{"passive": false}, sw.calls)

	c.Apply(context.Background(), "passive", true)
	assert.True(t, sw.calls["passive"])
}

func TestParseStateSignal(t *testing.T) {
	tests := []struct {
		payload string
		id      string
		on      bool
		ok      bool
	}{
		{"passive:on", "passive", true, true},
		{"passive:off", "passive", false, true},
		{"critical:true", "critical", true, true},
		{"builtin:critical:on", "builtin:critical", true, true},
		{"passive", "", false, false},
		{":on", "", false, false},
		{"passive:", "", false, false},
	}
	for _, tt := range tests {
		id, on, ok := ParseStateSignal(tt.payload)
		assert.Equal(t, tt.ok, ok, tt.payload)
		assert.Equal(t, tt.id, id, tt.payload)
		assert.Equal(t, tt.on, on, tt.payload)
	}
}

func TestControlListenerApplyDefinitions(t *testing.T) {
	sw := &fakeSwitch{calls: map[string]bool{}}
	c := NewControlListener(&fakeRedis{}, sw, "ctl", "disabled", zap.NewNop())

	c.ApplyDefinitions(context.Background(), []domain.PolicyDefinition{
		{Name: "passive", EnabledAtStart: true},
		{Name: "critical"},
		{Name: "ghost", EnabledAtStart: true},
	})
	assert.Equal(t, map[string]bool{"passive": true, "critical": false}, sw.calls)
}

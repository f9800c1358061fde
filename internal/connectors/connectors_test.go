package connectors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xela07ax/thermal-policy-host/internal/event"
)

// fakeConn отвечает на unary-вызов заранее заданной структурой.
type fakeConn struct {
	method string
	got    *structpb.Struct
	reply  map[string]interface{}
	err    error
}

func (c *fakeConn) Invoke(_ context.Context, method string, args, reply interface{}, _ ...grpc.CallOption) error {
	c.method = method
	c.got = args.(*structpb.Struct)
	if c.err != nil {
		return c.err
	}
	out, err := structpb.NewStruct(c.reply)
	if err != nil {
		return err
	}
	proto.Merge(reply.(*structpb.Struct), out)
	return nil
}

func (c *fakeConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("streams are not used")
}

func TestGRPCChannelSubmit(t *testing.T) {
	conn := &fakeConn{reply: map[string]interface{}{"status_code": 0, "message": ""}}
	ch := NewGRPCChannel(conn, time.Second)

	_, err := ch.Submit(context.Background(), Request{Tag: TagSetOsc, Policy: 3, Word: 0b0101})
	require.NoError(t, err)
	assert.Equal(t, SubmitMethod, conn.method)
	assert.Equal(t, TagSetOsc, conn.got.Fields["tag"].GetStringValue())
	assert.Equal(t, float64(3), conn.got.Fields["policy_index"].GetNumberValue())
	assert.Equal(t, float64(5), conn.got.Fields["word"].GetNumberValue())
}

func TestGRPCChannelErrors(t *testing.T) {
	tests := []struct {
		name      string
		conn      *fakeConn
		throttled bool
		after     time.Duration
	}{
		{"platform status", &fakeConn{reply: map[string]interface{}{"status_code": 5, "message": "osc rejected"}}, false, 0},
		{"platform throttles", &fakeConn{reply: map[string]interface{}{"status_code": 8, "retry_after_ms": 250}}, true, 250 * time.Millisecond},
		{"resource exhausted", &fakeConn{err: status.Error(codes.ResourceExhausted, "slow down")}, true, throttleBackoff},
		{"unavailable", &fakeConn{err: status.Error(codes.Unavailable, "gone")}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGRPCChannel(tt.conn, 0).Submit(context.Background(), Request{Tag: TagSetOsc})
			require.Error(t, err)

			var te *ThrottleError
			assert.Equal(t, tt.throttled, errors.As(err, &te))
			if tt.throttled {
				assert.Equal(t, tt.after, te.RetryAfter)
			}
		})
	}
}

func TestLoopbackChannel(t *testing.T) {
	ch := &LoopbackChannel{}
	_, err := ch.Submit(context.Background(), Request{Word: 1})
	require.NoError(t, err)

	ch.Fail = func(r Request) error {
		if r.Word == 0 {
			return errors.New("rejected")
		}
		return nil
	}
	_, err = ch.Submit(context.Background(), Request{Word: 0})
	assert.Error(t, err)
	assert.Equal(t, []uint32{1, 0}, ch.Words())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ch.Submit(ctx, Request{Word: 9})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, ch.Requests(), 2)

	ch.Reset()
	assert.Empty(t, ch.Requests())
}

func TestChannelErrorUnwraps(t *testing.T) {
	cause := errors.New("down")
	err := &ChannelError{Tag: TagSetOsc, Policy: 2, Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "PlatformNotificationSetOsc")
}

// fakeRedis реализует только команды, которые нужны RedisSource и RedisConfigData.
type fakeRedis struct {
	redis.Cmdable
	values map[string]string
	pipe   *fakePipe
}

func (r *fakeRedis) TxPipeline() redis.Pipeliner { return r.pipe }

func (r *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := r.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

type fakePipe struct {
	redis.Pipeliner
	ops     []string
	execErr error
}

func (p *fakePipe) SAdd(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	p.ops = append(p.ops, "sadd "+key+" "+members[0].(string))
	return redis.NewIntResult(1, nil)
}

func (p *fakePipe) SRem(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	p.ops = append(p.ops, "srem "+key+" "+members[0].(string))
	return redis.NewIntResult(1, nil)
}

func (p *fakePipe) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	p.ops = append(p.ops, "publish "+channel+" "+message.(string))
	return redis.NewIntResult(1, nil)
}

func (p *fakePipe) Exec(context.Context) ([]redis.Cmder, error) {
	return nil, p.execErr
}

func TestRedisSource(t *testing.T) {
	pipe := &fakePipe{}
	src := NewRedisSource(&fakeRedis{pipe: pipe}, "kinds", "changes")
	ctx := context.Background()

	require.NoError(t, src.Subscribe(ctx, event.KindPolicyOperatingSystemLidStateChanged))
	require.NoError(t, src.Unsubscribe(ctx, event.KindPolicyOperatingSystemLidStateChanged))
	assert.Equal(t, []string{
		"sadd kinds PolicyOperatingSystemLidStateChanged",
		"publish changes subscribe:PolicyOperatingSystemLidStateChanged",
		"srem kinds PolicyOperatingSystemLidStateChanged",
		"publish changes unsubscribe:PolicyOperatingSystemLidStateChanged",
	}, pipe.ops)

	pipe.execErr = errors.New("conn refused")
	assert.Error(t, src.Subscribe(ctx, event.KindSuspend))
}

func TestRedisConfigData(t *testing.T) {
	cfg := NewRedisConfigData(&fakeRedis{values: map[string]string{"cfg:passive/trt": "table"}}, "cfg:")

	v, err := cfg.Read(context.Background(), "passive/trt")
	require.NoError(t, err)
	assert.Equal(t, []byte("table"), v)

	_, err = cfg.Read(context.Background(), "passive/pida")
	assert.ErrorIs(t, err, ErrConfigDataNotFound)
}

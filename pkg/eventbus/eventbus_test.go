package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type testEvent struct{ name string }

func (e testEvent) Name() string { return e.name }

func TestBus_PublishReachesSubscribers(t *testing.T) {
	bus := New(zap.NewNop())
	var calls int32

	bus.Subscribe("a", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	bus.Subscribe("a", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("falha registrada no log")
	})
	bus.Subscribe("b", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 100)
		return nil
	})

	bus.Publish(context.Background(), testEvent{name: "a"})
	bus.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

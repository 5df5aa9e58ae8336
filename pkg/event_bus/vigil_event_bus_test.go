package event_bus

import (
	"errors"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigil-robotics/vigil/pkg/log/model"
	"go.uber.org/zap"
)

func TestVigilEventBus(t *testing.T) {
	t.Run("Delivers a published batch to a subscriber", func(t *testing.T) {
		bus := EventBus.New()
		vigilBus := NewVigilEventBus[[]model.LogEntry, []model.LogEntry](bus, zap.NewNop())
		received := make(chan []model.LogEntry, 1)

		err := vigilBus.Subscribe(
			ErrorContextTopic,
			func(batch []model.LogEntry) error {
				received <- batch
				return nil
			},
			false,
		)
		require.NoError(t, err)

		batch := []model.LogEntry{
			{
				Timestamp: time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC),
				Level:     model.ErrorLevel,
				Node:      "/move_base",
				Message:   "Transform timeout",
				RawLine:   "[ERROR] [/move_base]: Transform timeout",
			},
		}
		require.NoError(t, vigilBus.Publish(ErrorContextTopic, batch))

		select {
		case got := <-received:
			assert.Equal(t, batch, got)
		case <-time.After(time.Second):
			t.Fatal("subscriber never received the batch")
		}
	})

	t.Run("Subscribers on different topics do not cross-receive", func(t *testing.T) {
		bus := EventBus.New()
		vigilBus := NewVigilEventBus[[]model.LogEntry, []model.LogEntry](bus, zap.NewNop())
		flushes := make(chan []model.LogEntry, 1)

		err := vigilBus.Subscribe(
			WindowFlushTopic,
			func(batch []model.LogEntry) error {
				flushes <- batch
				return nil
			},
			false,
		)
		require.NoError(t, err)

		require.NoError(t, vigilBus.Publish(ErrorContextTopic, []model.LogEntry{{Message: "boom"}}))
		vigilBus.WaitAsync()

		select {
		case batch := <-flushes:
			t.Fatalf("flush subscriber received a batch from another topic: %+v", batch)
		default:
		}
	})

	t.Run("A failing handler does not affect the publisher", func(t *testing.T) {
		bus := EventBus.New()
		vigilBus := NewVigilEventBus[[]model.LogEntry, []model.LogEntry](bus, zap.NewNop())

		err := vigilBus.Subscribe(
			ErrorContextTopic,
			func(batch []model.LogEntry) error {
				return errors.New("handler failure")
			},
			false,
		)
		require.NoError(t, err)

		assert.NoError(t, vigilBus.Publish(ErrorContextTopic, []model.LogEntry{{Message: "boom"}}))
		vigilBus.WaitAsync()
	})

	t.Run("WaitAsync returns after in-flight handlers complete", func(t *testing.T) {
		bus := EventBus.New()
		vigilBus := NewVigilEventBus[[]model.LogEntry, []model.LogEntry](bus, zap.NewNop())
		handled := make(chan struct{}, 1)

		err := vigilBus.Subscribe(
			WindowFlushTopic,
			func(batch []model.LogEntry) error {
				time.Sleep(50 * time.Millisecond)
				handled <- struct{}{}
				return nil
			},
			false,
		)
		require.NoError(t, err)

		require.NoError(t, vigilBus.Publish(WindowFlushTopic, []model.LogEntry{{Message: "flush"}}))
		vigilBus.WaitAsync()

		select {
		case <-handled:
		default:
			t.Fatal("WaitAsync returned before the handler finished")
		}
	})
}

package pubsub

import (
	"context"
	"sync"

	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
)

const memoryBufferSize = 16

// Memory fans out events to subscribers of the same process. A subscriber
// whose buffer is full misses the event.
type Memory struct {
	mu    sync.Mutex
	rooms map[types.UserID]map[*memorySubscription]struct{}
}

var _ interfaces.Publisher = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[types.UserID]map[*memorySubscription]struct{}),
	}
}

func (x *Memory) Publish(ctx context.Context, room types.UserID, ev *model.Event) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for sub := range x.rooms[room] {
		select {
		case sub.events <- ev:
		default:
			logging.From(ctx).Warn("subscriber is slow, event dropped", "room", room, "type", ev.Type)
		}
	}
	return nil
}

func (x *Memory) Subscribe(ctx context.Context, room types.UserID) (interfaces.Subscription, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	sub := &memorySubscription{
		parent: x,
		room:   room,
		events: make(chan *model.Event, memoryBufferSize),
	}
	if x.rooms[room] == nil {
		x.rooms[room] = make(map[*memorySubscription]struct{})
	}
	x.rooms[room][sub] = struct{}{}

	return sub, nil
}

func (x *Memory) unsubscribe(sub *memorySubscription) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.rooms[sub.room][sub]; !ok {
		return
	}
	delete(x.rooms[sub.room], sub)
	if len(x.rooms[sub.room]) == 0 {
		delete(x.rooms, sub.room)
	}
	close(sub.events)
}

type memorySubscription struct {
	parent *Memory
	room   types.UserID
	events chan *model.Event
}

func (x *memorySubscription) Events() <-chan *model.Event {
	return x.events
}

func (x *memorySubscription) Close() error {
	x.parent.unsubscribe(x)
	return nil
}

package daserver

import (
	"context"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/axiomesh/axiom-da-node/api/sequencerpb"
)

type Subscriber struct {
	id   uint64
	c    chan *sequencerpb.StreamReadFromHeightResponse
	done chan struct{}
	once sync.Once
}

func (s *Subscriber) ID() uint64 {
	return s.id
}

func (s *Subscriber) C() <-chan *sequencerpb.StreamReadFromHeightResponse {
	return s.c
}

// Done is closed once the subscriber has been dropped.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

func (s *Subscriber) drop() {
	s.once.Do(func() {
		close(s.done)
	})
}

// Broadcaster fans blocks and heartbeats out to every stream subscriber. A
// subscriber whose buffer is full is considered dead and dropped.
type Broadcaster struct {
	subs       cmap.ConcurrentMap[uint64, *Subscriber]
	nextID     *atomic.Uint64
	bufferSize int
	logger     logrus.FieldLogger
}

func NewBroadcaster(bufferSize int, logger logrus.FieldLogger) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Broadcaster{
		subs: cmap.NewWithCustomShardingFunction[uint64, *Subscriber](func(key uint64) uint32 {
			return uint32(key)
		}),
		nextID:     atomic.NewUint64(0),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

func (b *Broadcaster) Subscribe() *Subscriber {
	s := &Subscriber{
		id:   b.nextID.Inc(),
		c:    make(chan *sequencerpb.StreamReadFromHeightResponse, b.bufferSize),
		done: make(chan struct{}),
	}
	b.subs.Set(s.id, s)
	subscriberGauge.Set(float64(b.subs.Count()))
	return s
}

func (b *Broadcaster) Unsubscribe(s *Subscriber) {
	b.subs.Remove(s.id)
	s.drop()
	subscriberGauge.Set(float64(b.subs.Count()))
}

// Broadcast delivers resp to every subscriber without blocking and returns the
// number of subscribers that got it.
func (b *Broadcaster) Broadcast(resp *sequencerpb.StreamReadFromHeightResponse) int {
	delivered := 0
	for _, s := range b.subs.Items() {
		select {
		case s.c <- resp:
			delivered++
		default:
			b.subs.Remove(s.id)
			s.drop()
			prunedSubscriberCounter.Inc()
			b.logger.WithField("subscriber", s.id).Warn("Drop subscriber, send buffer is full")
		}
	}
	subscriberGauge.Set(float64(b.subs.Count()))
	return delivered
}

func (b *Broadcaster) BroadcastBlock(blk *sequencerpb.BlockV1) int {
	return b.Broadcast(sequencerpb.NewBlockResponse(blk))
}

func (b *Broadcaster) Heartbeat() int {
	heartbeatSentCounter.Inc()
	return b.Broadcast(sequencerpb.NewHeartbeatResponse())
}

// StartHeartbeat broadcasts a heartbeat every interval until ctx is done.
func (b *Broadcaster) StartHeartbeat(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.Heartbeat()
			}
		}
	}()
}

func (b *Broadcaster) Count() int {
	return b.subs.Count()
}

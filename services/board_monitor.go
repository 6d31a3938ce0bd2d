package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/kds"
	"github.com/yeremiapane/restaurant-backoffice/liveboard"
	"github.com/yeremiapane/restaurant-backoffice/session"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

// BoardMonitor owns the live board of the branch: the snapshot, the stream
// consumer and the kitchen screen relay.
type BoardMonitor struct {
	Board    *liveboard.Board
	Hub      *kds.Hub
	Client   *client.Client
	StopChan chan struct{}
	// Interval is the wait between snapshot attempts while the backend is down.
	Interval time.Duration

	mu       sync.Mutex
	consumer *liveboard.Consumer
	stopped  bool
}

func NewBoardMonitor(c *client.Client, board *liveboard.Board, hub *kds.Hub) *BoardMonitor {
	return &BoardMonitor{
		Board:    board,
		Hub:      hub,
		Client:   c,
		StopChan: make(chan struct{}),
		Interval: 5 * time.Second,
	}
}

// Start relays board changes to the hub. When a service session is given the
// stream starts right away; otherwise the first staff session to open the
// board is used.
func (bm *BoardMonitor) Start(ctx context.Context, service *session.Gate) {
	go bm.Hub.Run(bm.Board, bm.StopChan)

	if service != nil && service.Credentials() != (client.Credentials{}) {
		go bm.loadAndStream(ctx, service)
	}
}

func (bm *BoardMonitor) loadAndStream(ctx context.Context, gate *session.Gate) {
	ticker := time.NewTicker(bm.Interval)
	defer ticker.Stop()

	for {
		err := bm.Board.Load(ctx, gate.Credentials())
		if err == nil {
			bm.Attach(ctx, gate)
			return
		}
		if client.IsUnauthorized(err) {
			gate.Expire()
			utils.Error().WithError(err).Error("service session rejected, waiting for a staff session")
			return
		}
		utils.Error().WithError(err).Error("board snapshot failed")

		select {
		case <-ticker.C:
		case <-bm.StopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Attach starts streaming with gate unless a healthy stream is already running.
func (bm *BoardMonitor) Attach(ctx context.Context, gate *session.Gate) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.stopped {
		return
	}
	if bm.consumer != nil {
		select {
		case <-bm.consumer.Done():
		default:
			return
		}
	}

	bm.consumer = liveboard.NewConsumer(bm.Board, bm.Client, gate)
	bm.consumer.Start(ctx)
	utils.Info().WithField("sucursal", bm.Board.SucursalID()).Info("live stream consumer started")
}

// Ensure makes sure the board has a snapshot and a stream, borrowing the
// caller's session when nothing else is feeding it.
func (bm *BoardMonitor) Ensure(ctx context.Context, gate *session.Gate) error {
	if !bm.Board.Loaded() {
		if err := bm.Board.Load(ctx, gate.Credentials()); err != nil {
			return err
		}
	}
	bm.Attach(context.WithoutCancel(ctx), gate)
	return nil
}

// Streaming reports whether a consumer is currently running.
func (bm *BoardMonitor) Streaming() bool {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.consumer == nil {
		return false
	}
	select {
	case <-bm.consumer.Done():
		return false
	default:
		return true
	}
}

func (bm *BoardMonitor) Stop() {
	bm.mu.Lock()
	if bm.stopped {
		bm.mu.Unlock()
		return
	}
	bm.stopped = true
	consumer := bm.consumer
	bm.mu.Unlock()

	close(bm.StopChan)
	if consumer != nil {
		consumer.Stop()
	}
	bm.Board.Close()
}

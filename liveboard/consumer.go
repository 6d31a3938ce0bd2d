package liveboard

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

// DefaultRetry is the reconnection delay used until the server sends one.
const DefaultRetry = 3 * time.Second

type Streamer interface {
	OpenLiveStream(ctx context.Context, creds client.Credentials, sucursalID int64, lastEventID string) (io.ReadCloser, error)
}

// Session supplies the stream credentials and hears about rejected ones.
type Session interface {
	Credentials() client.Credentials
	Expire()
}

// Consumer keeps the board fed from the live stream. It reconnects the way an
// EventSource does: after the server-given retry delay, resuming from the last
// event id.
type Consumer struct {
	Board    *Board
	Streamer Streamer
	Session  Session

	mu          sync.Mutex
	retry       time.Duration
	lastEventID string
	body        io.ReadCloser
	stopped     bool
	cancel      context.CancelFunc
	done        chan struct{}
	stopOnce    sync.Once
}

func NewConsumer(board *Board, streamer Streamer, session Session) *Consumer {
	return &Consumer{
		Board:    board,
		Streamer: streamer,
		Session:  session,
		retry:    DefaultRetry,
		done:     make(chan struct{}),
	}
}

func (c *Consumer) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		defer close(c.done)
		c.run(ctx)
	}()
}

// Stop closes the stream and waits for the consumer to exit.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		if c.cancel != nil {
			c.cancel()
		}
		if c.body != nil {
			c.body.Close()
		}
		started := c.cancel != nil
		c.mu.Unlock()

		if started {
			<-c.done
		}
		utils.Info().WithField("sucursal", c.Board.SucursalID()).Info("live stream consumer stopped")
	})
}

// Done is closed once the consumer has exited.
func (c *Consumer) Done() <-chan struct{} { return c.done }

func (c *Consumer) LastEventID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastEventID
}

func (c *Consumer) run(ctx context.Context) {
	log := utils.Info().WithField("sucursal", c.Board.SucursalID())

	for {
		body, err := c.Streamer.OpenLiveStream(ctx, c.Session.Credentials(), c.Board.SucursalID(), c.LastEventID())
		switch {
		case ctx.Err() != nil:
			if body != nil {
				body.Close()
			}
			return
		case client.IsUnauthorized(err):
			utils.Error().WithError(err).Error("live stream rejected credentials")
			c.Session.Expire()
			return
		case err != nil:
			utils.Error().WithError(err).Error("live stream connection failed")
		default:
			if !c.setBody(body) {
				body.Close()
				return
			}
			log.WithField("last_event_id", c.LastEventID()).Info("live stream connected")
			err = client.ReadEvents(body, c.handle)
			body.Close()
			c.setBody(nil)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				utils.Error().WithError(err).Error("live stream interrupted")
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.retryDelay()):
		}
	}
}

// setBody records the open stream so Stop can close it. It reports false once
// Stop has run.
func (c *Consumer) setBody(body io.ReadCloser) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return false
	}
	c.body = body
	return true
}

func (c *Consumer) retryDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retry
}

func (c *Consumer) handle(e client.Event) error {
	c.mu.Lock()
	if e.ID != "" {
		c.lastEventID = e.ID
	}
	if e.Retry > 0 {
		c.retry = e.Retry
	}
	c.mu.Unlock()

	if e.Data == "" {
		return nil
	}
	evt, ok := ParseEvent(e.Data)
	if !ok {
		return nil
	}
	if order, applied := c.Board.Apply(evt); applied {
		utils.Info().WithFields(logrus.Fields{
			"tipo":   evt.Tipo,
			"order":  order.ID,
			"estado": order.Estado,
		}).Info("live event applied")
	}
	return nil
}

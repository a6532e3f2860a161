package game

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// NetworkSession is the transport handle the engine writes through. The
// gorilla wrapper implements it; tests substitute mocks.
type NetworkSession interface {
	Close(errCode string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

const (
	sendBufferSize = 256
	pingPeriod     = 30 * time.Second
)

// playerConn pairs a socket with its outbound queue. One WritePump goroutine
// per connection drains the queue and keeps the peer pinged.
type playerConn struct {
	socket    NetworkSession
	limiter   *rate.Limiter
	inbox     chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newPlayerConn(socket NetworkSession) *playerConn {
	return &playerConn{
		socket:  socket,
		limiter: rate.NewLimiter(10, 30),
		inbox:   make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
	}
}

// Enqueue queues data for the write pump without ever blocking the engine.
// A full buffer means a client too slow to keep up; the message is dropped.
func (c *playerConn) Enqueue(data []byte) {
	select {
	case <-c.done:
	case c.inbox <- data:
	default:
	}
}

// Allow reports whether an inbound message fits the connection's rate budget.
func (c *playerConn) Allow() bool {
	return c.limiter.Allow()
}

func (c *playerConn) WritePump() {
	pings := time.NewTicker(pingPeriod)
	defer pings.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.inbox:
			if err := c.socket.Write(data); err != nil {
				return
			}
		case <-pings.C:
			if err := c.socket.Ping(); err != nil {
				return
			}
		}
	}
}

// release shuts the connection down; safe to call more than once.
func (c *playerConn) release(errCode string) {
	c.closeOnce.Do(func() {
		close(c.done)
		c.socket.Close(errCode)
	})
}

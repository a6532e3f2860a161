package game

import (
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// --- PeriodicTickerChannelCreator ---

type MockPeriodicTickerChannelCreator struct {
	mock.Mock
}

func (m *MockPeriodicTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	args := m.Called(duration)
	return args.Get(0).(chan time.Time)
}

// --- NetworkSession ---

// fakeSocket scripts a connection: the test feeds inbound frames through in
// and observes everything the server writes on out.
type fakeSocket struct {
	in        chan []byte
	out       chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		in:     make(chan []byte, 64),
		out:    make(chan []byte, 256),
		closed: make(chan struct{}),
	}
}

var errSocketClosed = errors.New("socket closed")

func (f *fakeSocket) Read() ([]byte, error) {
	select {
	case data := <-f.in:
		return data, nil
	case <-f.closed:
		return nil, errSocketClosed
	}
}

func (f *fakeSocket) Write(data []byte) error {
	select {
	case f.out <- data:
		return nil
	case <-f.closed:
		return errSocketClosed
	}
}

func (f *fakeSocket) Ping() error { return nil }

func (f *fakeSocket) Close(errCode string) {
	f.closeOnce.Do(func() { close(f.closed) })
}

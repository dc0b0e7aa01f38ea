// Package adapter drives a radio adapter over a byte stream, usually a
// serial port. Frames are newline-delimited JSON: requests carry an op and a
// sequence number the adapter echoes in its acknowledgement; events carry an
// event kind and are passed to a handler in arrival order.
package adapter

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"zigbee-things/internal/coordinator"
)

// ErrClosed is returned for requests on a closed adapter.
var ErrClosed = errors.New("adapter closed")

// Frame is one line on the wire.
type Frame struct {
	Seq   uint32          `json:"seq,omitempty"`
	Op    string          `json:"op,omitempty"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// EventHandler receives adapter events. coordinator.Coordinator.Dispatch
// has this shape.
type EventHandler func(kind string, payload []byte) error

// Adapter implements coordinator.Transport over a frame stream.
type Adapter struct {
	rw     io.ReadWriteCloser
	logger *slog.Logger

	seq     atomic.Uint32
	mu      sync.Mutex
	pending map[uint32]chan Frame
	writeMu sync.Mutex

	handlerMu sync.RWMutex
	handler   EventHandler

	queueMu   sync.Mutex
	queue     []Frame
	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ coordinator.Transport = (*Adapter)(nil)

// New starts an adapter on rw. The adapter owns rw and closes it on Close.
func New(rw io.ReadWriteCloser, logger *slog.Logger) *Adapter {
	a := &Adapter{
		rw:      rw,
		logger:  logger.With("component", "adapter"),
		pending: make(map[uint32]chan Frame),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	a.wg.Add(2)
	go a.readLoop()
	go a.dispatchLoop()
	return a
}

// OnEvent sets the handler for adapter events. Events that arrive before a
// handler is set are dropped.
func (a *Adapter) OnEvent(h EventHandler) {
	a.handlerMu.Lock()
	a.handler = h
	a.handlerMu.Unlock()
}

// Close stops the loops and closes the underlying stream.
func (a *Adapter) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.done)
		err = a.rw.Close()
		a.wg.Wait()
	})
	return err
}

func (a *Adapter) Bind(ctx context.Context, req coordinator.BindRequest) error {
	return a.request(ctx, coordinator.OpBind, req)
}

func (a *Adapter) ConfigureReporting(ctx context.Context, req coordinator.ReportingRequest) error {
	return a.request(ctx, coordinator.OpConfigureReporting, req)
}

func (a *Adapter) ReadAttributes(ctx context.Context, req coordinator.ReadRequest) error {
	return a.request(ctx, coordinator.OpRead, req)
}

func (a *Adapter) WriteAttributes(ctx context.Context, req coordinator.WriteRequest) error {
	return a.request(ctx, coordinator.OpWrite, req)
}

func (a *Adapter) SendCommand(ctx context.Context, req coordinator.CommandRequest) error {
	return a.request(ctx, coordinator.OpCommand, req)
}

// request writes a request frame and waits for the adapter's acknowledgement.
func (a *Adapter) request(ctx context.Context, op string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	seq := a.seq.Add(1)

	ch := make(chan Frame, 1)
	a.mu.Lock()
	a.pending[seq] = ch
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.pending, seq)
		a.mu.Unlock()
	}()

	if err := a.write(Frame{Seq: seq, Op: op, Data: data}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	a.logger.Debug("adapter TX", "op", op, "seq", seq)

	select {
	case ack := <-ch:
		if ack.Error != "" {
			a.logger.Warn("adapter RX", "op", op, "seq", seq, "err", ack.Error)
			return fmt.Errorf("%s: adapter: %s", op, ack.Error)
		}
		return nil
	case <-ctx.Done():
		a.logger.Warn("adapter timeout", "op", op, "seq", seq, "err", ctx.Err())
		return fmt.Errorf("%s: %w", op, ctx.Err())
	case <-a.done:
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
}

func (a *Adapter) write(f Frame) error {
	line, err := json.Marshal(f)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if _, err := a.rw.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (a *Adapter) readLoop() {
	defer a.wg.Done()
	sc := bufio.NewScanner(a.rw)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)

	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var f Frame
		if err := json.Unmarshal(line, &f); err != nil {
			a.logger.Warn("adapter decode error", "err", err)
			continue
		}

		if f.Event != "" {
			a.enqueue(f)
			continue
		}

		a.mu.Lock()
		ch, ok := a.pending[f.Seq]
		a.mu.Unlock()
		if !ok {
			a.logger.Warn("adapter orphaned ack (too late)", "seq", f.Seq)
			continue
		}
		select {
		case ch <- f:
		default:
		}
	}

	select {
	case <-a.done:
	default:
		if err := sc.Err(); err != nil && !strings.Contains(err.Error(), "closed") {
			a.logger.Error("adapter read error", "err", err)
		}
	}
}

// enqueue queues an event for the dispatch loop. The queue is unbounded so
// the read loop never waits on a handler and acknowledgements behind a burst
// of events still reach their requests.
func (a *Adapter) enqueue(f Frame) {
	a.queueMu.Lock()
	a.queue = append(a.queue, f)
	a.queueMu.Unlock()
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func (a *Adapter) dequeue() (Frame, bool) {
	a.queueMu.Lock()
	defer a.queueMu.Unlock()
	if len(a.queue) == 0 {
		return Frame{}, false
	}
	f := a.queue[0]
	a.queue[0] = Frame{}
	a.queue = a.queue[1:]
	return f, true
}

// dispatchLoop hands events to the handler outside the read loop, so a
// handler may issue requests and wait for their acknowledgements.
func (a *Adapter) dispatchLoop() {
	defer a.wg.Done()
	for {
		select {
		case <-a.wake:
		case <-a.done:
			return
		}
		for {
			select {
			case <-a.done:
				return
			default:
			}
			f, ok := a.dequeue()
			if !ok {
				break
			}
			a.dispatch(f)
		}
	}
}

func (a *Adapter) dispatch(f Frame) {
	a.handlerMu.RLock()
	h := a.handler
	a.handlerMu.RUnlock()
	if h == nil {
		a.logger.Debug("adapter event dropped", "event", f.Event)
		return
	}
	if err := h(f.Event, f.Data); err != nil {
		a.logger.Warn("adapter event failed", "event", f.Event, "err", err)
	}
}

package adapter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zigbee-things/internal/coordinator"
)

type peer struct {
	conn net.Conn
	r    *bufio.Reader
}

func newPipe(t *testing.T) (*Adapter, *peer) {
	t.Helper()
	local, remote := net.Pipe()
	a := New(local, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() {
		remote.Close()
		a.Close()
	})
	return a, &peer{conn: remote, r: bufio.NewReader(remote)}
}

func (p *peer) read(t *testing.T) Frame {
	t.Helper()
	line, err := p.r.ReadBytes('\n')
	require.NoError(t, err)
	var f Frame
	require.NoError(t, json.Unmarshal(line, &f))
	return f
}

func (p *peer) write(t *testing.T, f Frame) {
	t.Helper()
	line, err := json.Marshal(f)
	require.NoError(t, err)
	_, err = p.conn.Write(append(line, '\n'))
	require.NoError(t, err)
}

func TestRequestAcknowledged(t *testing.T) {
	a, p := newPipe(t)
	addr, err := coordinator.ParseIEEE("00124B0012345678")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.ReadAttributes(context.Background(), coordinator.ReadRequest{
			IEEE: addr, Endpoint: 1, ClusterID: 0x0006, AttrIDs: []uint16{0x0000},
		})
	}()

	f := p.read(t)
	assert.Equal(t, coordinator.OpRead, f.Op)
	assert.NotZero(t, f.Seq)
	var req coordinator.ReadRequest
	require.NoError(t, json.Unmarshal(f.Data, &req))
	assert.Equal(t, addr, req.IEEE)
	assert.Equal(t, []uint16{0x0000}, req.AttrIDs)

	p.write(t, Frame{Seq: f.Seq})
	assert.NoError(t, <-errCh)
}

func TestRequestAdapterError(t *testing.T) {
	a, p := newPipe(t)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.SendCommand(context.Background(), coordinator.CommandRequest{ClusterID: 0x0006, CommandID: 0x01})
	}()

	f := p.read(t)
	p.write(t, Frame{Seq: f.Seq, Error: "no route"})
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no route")
}

func TestRequestTimeout(t *testing.T) {
	a, p := newPipe(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Bind(ctx, coordinator.BindRequest{ClusterID: 0x0006})
	}()

	f := p.read(t)
	assert.Equal(t, coordinator.OpBind, f.Op)
	assert.ErrorIs(t, <-errCh, context.DeadlineExceeded)

	// A late acknowledgement is dropped.
	p.write(t, Frame{Seq: f.Seq})
}

func TestEventsDispatchedInOrder(t *testing.T) {
	a, p := newPipe(t)

	got := make(chan string, 4)
	a.OnEvent(func(kind string, payload []byte) error {
		got <- kind + ":" + string(payload)
		return nil
	})

	p.write(t, Frame{Event: coordinator.AdapterDevice, Data: json.RawMessage(`{"ieee_address":"A"}`)})
	p.write(t, Frame{Event: coordinator.AdapterReport, Data: json.RawMessage(`{"ieee":"A"}`)})

	for _, want := range []string{`device:{"ieee_address":"A"}`, `report:{"ieee":"A"}`} {
		select {
		case kind := <-got:
			assert.Equal(t, want, kind)
		case <-time.After(time.Second):
			t.Fatalf("event %q not dispatched", want)
		}
	}
}

func TestHandlerMayIssueRequests(t *testing.T) {
	a, p := newPipe(t)

	done := make(chan error, 1)
	a.OnEvent(func(string, []byte) error {
		err := a.Bind(context.Background(), coordinator.BindRequest{ClusterID: 0x0402})
		done <- err
		return err
	})

	p.write(t, Frame{Event: coordinator.AdapterDevice, Data: json.RawMessage(`{}`)})
	f := p.read(t)
	assert.Equal(t, coordinator.OpBind, f.Op)
	p.write(t, Frame{Seq: f.Seq})

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("request from handler never completed")
	}
}

func TestAckBehindEventBurst(t *testing.T) {
	a, p := newPipe(t)

	const burst = 100
	bindErr := make(chan error, 1)
	reports := make(chan int, burst)
	a.OnEvent(func(kind string, payload []byte) error {
		if kind == coordinator.AdapterDevice {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			err := a.Bind(ctx, coordinator.BindRequest{ClusterID: 0x0006})
			bindErr <- err
			return err
		}
		var r struct{ N int }
		if err := json.Unmarshal(payload, &r); err != nil {
			return err
		}
		reports <- r.N
		return nil
	})

	p.write(t, Frame{Event: coordinator.AdapterDevice, Data: json.RawMessage(`{}`)})
	f := p.read(t)
	require.Equal(t, coordinator.OpBind, f.Op)

	// The handler is busy waiting for the ack while the reports pile up.
	for i := 0; i < burst; i++ {
		p.write(t, Frame{Event: coordinator.AdapterReport, Data: json.RawMessage(fmt.Sprintf(`{"N":%d}`, i))})
	}
	p.write(t, Frame{Seq: f.Seq})

	select {
	case err := <-bindErr:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("ack queued behind events never reached the request")
	}

	for i := 0; i < burst; i++ {
		select {
		case n := <-reports:
			require.Equal(t, i, n, "reports dispatched in arrival order")
		case <-time.After(time.Second):
			t.Fatalf("report %d not dispatched", i)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	a, _ := newPipe(t)
	require.NoError(t, a.Close())
	assert.NoError(t, a.Close())

	err := a.Bind(context.Background(), coordinator.BindRequest{})
	assert.Error(t, err)
}

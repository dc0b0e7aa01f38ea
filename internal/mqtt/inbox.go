//go:build !no_mqtt

package mqtt

import "sync"

type inbound struct {
	topic   string
	payload []byte
}

// inbox runs adapter events one at a time in arrival order. Paho delivers
// messages on their own goroutines so handlers may publish and wait; the
// inbox restores the ordering a device's reports need.
type inbox struct {
	mu    sync.Mutex
	queue []inbound
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newInbox() *inbox {
	return &inbox{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (in *inbox) push(topic string, payload []byte) {
	in.mu.Lock()
	in.queue = append(in.queue, inbound{topic: topic, payload: payload})
	in.mu.Unlock()
	select {
	case in.wake <- struct{}{}:
	default:
	}
}

func (in *inbox) pop() (inbound, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.queue) == 0 {
		return inbound{}, false
	}
	m := in.queue[0]
	in.queue[0] = inbound{}
	in.queue = in.queue[1:]
	return m, true
}

// run handles queued messages until stop is called.
func (in *inbox) run(handle func(topic string, payload []byte)) {
	for {
		select {
		case <-in.wake:
		case <-in.done:
			return
		}
		for {
			m, ok := in.pop()
			if !ok {
				break
			}
			handle(m.topic, m.payload)
		}
	}
}

func (in *inbox) stop() {
	in.once.Do(func() { close(in.done) })
}

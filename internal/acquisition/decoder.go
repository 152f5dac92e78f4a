package acquisition

import (
	"slices"
	"strings"
	"sync"
)

// PushDecoder is a Decoder fed by the host: an HTTP request carrying the
// decoded text, or a keyboard-wedge scanner typing into a terminal.
type PushDecoder struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(string)
}

func NewPushDecoder() *PushDecoder {
	return &PushDecoder{subs: make(map[int]func(string))}
}

func (d *PushDecoder) Subscribe(onDecode func(text string)) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = onDecode
	d.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subs, id)
			d.mu.Unlock()
		})
	}
}

// Push delivers text to every current subscriber in subscription order and
// reports how many received it. Blank text is dropped.
func (d *PushDecoder) Push(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	d.mu.Lock()
	ids := make([]int, 0, len(d.subs))

	for id := range d.subs {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	fns := make([]func(string), len(ids))
	for i, id := range ids {
		fns[i] = d.subs[id]
	}
	d.mu.Unlock()

	// Callbacks run unlocked so they may cancel their own subscription.
	for _, fn := range fns {
		fn(text)
	}

	return len(fns)
}

// Subscribers reports how many subscriptions are live.
func (d *PushDecoder) Subscribers() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.subs)
}

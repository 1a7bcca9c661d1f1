package pipeline

import (
	"sync"

	"github.com/tradewatch/whale-data/internal/model"
)

// intakeBuffer is a thread-safe trade queue that doubles its capacity
// when it reaches 70% full. Bursty producers (a poll cycle landing all
// its pages at once) grow the buffer instead of blocking or dropping.
type intakeBuffer struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      []model.TradeEvent
	head     int // read position
	tail     int // write position
	count    int
	capacity int
	closed   bool

	totalReceived int64
	totalDrained  int64
	resizeCount   int
}

func newIntakeBuffer(initialCapacity int) *intakeBuffer {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	b := &intakeBuffer{
		buf:      make([]model.TradeEvent, initialCapacity),
		capacity: initialCapacity,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// push adds a trade, growing the buffer at 70% capacity. Returns false
// if the buffer is closed.
func (b *intakeBuffer) push(ev model.TradeEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	threshold := (b.capacity * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if b.count+1 >= threshold {
		b.grow()
	}

	b.buf[b.tail] = ev
	b.tail = (b.tail + 1) % b.capacity
	b.count++
	b.totalReceived++

	b.cond.Signal()
	return true
}

// pop removes the oldest trade, blocking until one is available or the
// buffer is closed. Returns false when closed and empty.
func (b *intakeBuffer) pop() (model.TradeEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.count == 0 && !b.closed {
		b.cond.Wait()
	}

	if b.count == 0 && b.closed {
		return model.TradeEvent{}, false
	}

	ev := b.buf[b.head]
	b.buf[b.head] = model.TradeEvent{} // Clear reference for GC
	b.head = (b.head + 1) % b.capacity
	b.count--
	b.totalDrained++

	return ev, true
}

// close wakes all waiters. Remaining trades can still be popped.
func (b *intakeBuffer) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}

func (b *intakeBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *intakeBuffer) cap() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.capacity
}

// grow doubles the buffer capacity. Must be called with lock held.
func (b *intakeBuffer) grow() {
	newCapacity := b.capacity * 2
	newBuf := make([]model.TradeEvent, newCapacity)

	if b.count > 0 {
		if b.head < b.tail {
			copy(newBuf, b.buf[b.head:b.tail])
		} else {
			n := copy(newBuf, b.buf[b.head:])
			copy(newBuf[n:], b.buf[:b.tail])
		}
	}

	b.buf = newBuf
	b.head = 0
	b.tail = b.count
	b.capacity = newCapacity
	b.resizeCount++
}

package stats

// window is a fixed-capacity FIFO of notional values. Not safe for
// concurrent use; the engine serializes all access.
type window struct {
	values   []float64
	head     int // Index of the oldest value
	count    int
	capacity int
}

func newWindow(capacity int) *window {
	if capacity < 1 {
		capacity = 1
	}
	return &window{
		values:   make([]float64, capacity),
		capacity: capacity,
	}
}

// push appends a value, evicting the oldest once at capacity.
func (w *window) push(v float64) {
	if w.count < w.capacity {
		w.values[(w.head+w.count)%w.capacity] = v
		w.count++
		return
	}
	w.values[w.head] = v
	w.head = (w.head + 1) % w.capacity
}

func (w *window) len() int {
	return w.count
}

// snapshot returns the contents in insertion order, oldest first.
func (w *window) snapshot() []float64 {
	out := make([]float64, w.count)
	for i := 0; i < w.count; i++ {
		out[i] = w.values[(w.head+i)%w.capacity]
	}
	return out
}

// moments returns mean and population variance of the current contents.
func (w *window) moments() (mean, variance float64) {
	if w.count == 0 {
		return 0, 0
	}

	var sum float64
	for i := 0; i < w.count; i++ {
		sum += w.values[(w.head+i)%w.capacity]
	}
	mean = sum / float64(w.count)

	var sq float64
	for i := 0; i < w.count; i++ {
		d := w.values[(w.head+i)%w.capacity] - mean
		sq += d * d
	}
	variance = sq / float64(w.count)

	return mean, variance
}

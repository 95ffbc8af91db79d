package feed

import "time"

// DefaultDebounce is the quiet period before live search text is used.
const DefaultDebounce = 400 * time.Millisecond

// Ticket identifies one scheduled debounce.
type Ticket uint64

// Debouncer keeps a single pending slot. Scheduling replaces whatever was
// pending; only the newest ticket can fire. The caller owns the clock and
// reports expiry with Fire, which keeps the Debouncer free of goroutines.
type Debouncer struct {
	delay   time.Duration
	seq     Ticket
	pending bool
	text    string
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule replaces the pending slot with text.
func (d *Debouncer) Schedule(text string) Ticket {
	d.seq++
	d.pending = true
	d.text = text
	return d.seq
}

// Fire returns the pending text if t is the newest ticket, emptying the slot.
func (d *Debouncer) Fire(t Ticket) (string, bool) {
	if !d.pending || t != d.seq {
		return "", false
	}
	d.pending = false
	text := d.text
	d.text = ""
	return text, true
}

func (d *Debouncer) Cancel() {
	d.pending = false
	d.text = ""
}

func (d *Debouncer) Pending() bool {
	return d.pending
}

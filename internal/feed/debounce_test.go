package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_OnlyNewestFires(t *testing.T) {
	d := NewDebouncer(400 * time.Millisecond)

	var tickets []Ticket
	for _, text := range []string{"s", "su", "sun", "suns", "sunset"} {
		tickets = append(tickets, d.Schedule(text))
	}
	assert.True(t, d.Pending())

	fired := 0
	var got string
	for _, tk := range tickets {
		if text, ok := d.Fire(tk); ok {
			fired++
			got = text
		}
	}
	assert.Equal(t, 1, fired)
	assert.Equal(t, "sunset", got)
	assert.False(t, d.Pending())

	// A ticket fires at most once.
	_, ok := d.Fire(tickets[len(tickets)-1])
	assert.False(t, ok)
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(0)
	assert.Equal(t, DefaultDebounce, d.Delay())

	tk := d.Schedule("cat")
	d.Cancel()
	_, ok := d.Fire(tk)
	assert.False(t, ok)
}

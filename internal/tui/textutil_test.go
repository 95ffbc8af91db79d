package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncateEnd("hello", 10))
	assert.Equal(t, "hel…", truncateEnd("hello", 4))
	assert.Equal(t, "", truncateEnd("hello", 0))
	assert.Equal(t, "/h…pg", truncateMiddle("/home/pics/a.jpg", 5))
	assert.Equal(t, "short", truncateMiddle("short", 10))
}

func TestHumanCount(t *testing.T) {
	assert.Equal(t, "950", humanCount(950))
	assert.Equal(t, "1k", humanCount(1000))
	assert.Equal(t, "1.2k", humanCount(1234))
	assert.Equal(t, "3.4M", humanCount(3_400_000))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Nature", capitalize("nature"))
	assert.Equal(t, "", capitalize(""))
}

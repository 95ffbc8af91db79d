package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageRecord_AspectRatio(t *testing.T) {
	assert.InDelta(t, 1.5, ImageRecord{ImageWidth: 1500, ImageHeight: 1000}.AspectRatio(), 0.0001)
	assert.Equal(t, 1.0, ImageRecord{}.AspectRatio())
	assert.Equal(t, 1.0, ImageRecord{ImageWidth: 10}.AspectRatio())
}

func TestImageRecord_TagList(t *testing.T) {
	r := ImageRecord{Tags: "mountain, lake ,, sunset"}
	assert.Equal(t, []string{"mountain", "lake", "sunset"}, r.TagList())
	assert.Nil(t, ImageRecord{}.TagList())
}

func TestResponse_Records(t *testing.T) {
	var nilResp *Response
	_, ok := nilResp.Records()
	assert.False(t, ok)

	_, ok = (&Response{Success: false, Data: &ResponseData{Hits: []ImageRecord{{ID: 1}}}}).Records()
	assert.False(t, ok)

	_, ok = (&Response{Success: true}).Records()
	assert.False(t, ok)

	_, ok = (&Response{Success: true, Data: &ResponseData{}}).Records()
	assert.False(t, ok)

	hits, ok := (&Response{Success: true, Data: &ResponseData{Hits: []ImageRecord{}}}).Records()
	assert.True(t, ok)
	assert.Empty(t, hits)
}

func TestDecodeResponse(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"total":2,"totalHits":2,"hits":[{"id":1},{"id":2}]}`))
	assert.NoError(t, err)
	hits, ok := resp.Records()
	assert.True(t, ok)
	assert.Len(t, hits, 2)

	resp, err = DecodeResponse([]byte(`{"error":"nope"}`))
	assert.NoError(t, err)
	_, ok = resp.Records()
	assert.False(t, ok)

	_, err = DecodeResponse([]byte(`[INVALID`))
	assert.Error(t, err)
}

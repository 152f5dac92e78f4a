package acquisition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/shelflife/internal/acquisition"
)

func TestPushDecoder(t *testing.T) {
	d := acquisition.NewPushDecoder()

	var got []string

	cancelA := d.Subscribe(func(text string) { got = append(got, "a:"+text) })
	d.Subscribe(func(text string) { got = append(got, "b:"+text) })

	assert.Equal(t, 2, d.Push(" 123 "))
	assert.Equal(t, []string{"a:123", "b:123"}, got)

	cancelA()
	cancelA()

	assert.Equal(t, 1, d.Push("456"))
	assert.Equal(t, 0, d.Push("   "))
	assert.Equal(t, []string{"a:123", "b:123", "b:456"}, got)
}

func TestPushDecoder_CancelFromCallback(t *testing.T) {
	d := acquisition.NewPushDecoder()

	calls := 0

	var cancel func()
	cancel = d.Subscribe(func(string) {
		calls++
		cancel()
	})

	d.Push("1")
	d.Push("2")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, d.Subscribers())
}

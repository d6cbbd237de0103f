package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishedSet(t *testing.T) {
	api := NewPublishedSet("add", "subtract")

	assert.True(t, api.Published("add"))
	assert.True(t, api.Published("subtract"))
	assert.False(t, api.Published("hidden"))
	assert.False(t, NewPublishedSet().Published("add"))
}

func TestAPIFunc(t *testing.T) {
	api := APIFunc(func(name string) bool { return name == "ping" })

	assert.True(t, api.Published("ping"))
	assert.False(t, api.Published("add"))
}

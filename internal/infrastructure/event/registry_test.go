package event

import (
	"testing"

	"github.com/cshub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_HandlersFor(t *testing.T) {
	r := NewHandlerRegistry()
	typed := newTestHandler()
	wildcard := newTestHandler()

	r.Register(typed, "A", "B")
	r.Register(wildcard)

	assert.Equal(t, []shared.EventHandler{typed, wildcard}, r.HandlersFor("A"))
	assert.Equal(t, []shared.EventHandler{typed, wildcard}, r.HandlersFor("B"))
	assert.Equal(t, []shared.EventHandler{wildcard}, r.HandlersFor("C"))
	assert.Equal(t, 2, r.Len())
}

func TestHandlerRegistry_RegisterTwiceWidens(t *testing.T) {
	r := NewHandlerRegistry()
	h := newTestHandler()

	r.Register(h, "A")
	r.Register(h, "B")
	assert.Equal(t, 1, r.Len())
	assert.Len(t, r.HandlersFor("A"), 1)
	assert.Len(t, r.HandlersFor("B"), 1)
	assert.Empty(t, r.HandlersFor("C"))

	r.Register(h)
	assert.Len(t, r.HandlersFor("C"), 1)
	assert.Equal(t, 1, r.Len())
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	r := NewHandlerRegistry()
	h1 := newTestHandler()
	h2 := newTestHandler()
	r.Register(h1, "A")
	r.Register(h2, "A")

	r.Unregister(h1)
	assert.Equal(t, []shared.EventHandler{h2}, r.HandlersFor("A"))

	r.Unregister(h1)
	assert.Equal(t, 1, r.Len())
}

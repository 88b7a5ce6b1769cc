package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"Pendiente", StatusPendiente, true},
		{"pendiente", StatusPendiente, true},
		{"  CANCELADA  ", StatusCancelada, true},
		{"confirmada", StatusConfirmada, true},
		{"enviada", StatusEnviada, true},
		{"ComPletaDa", StatusCompletada, true},
		{"", "", false},
		{"Despachada", "", false},
		{"Pendientes", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeStatus(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestNormalizeChannel(t *testing.T) {
	assert.Equal(t, ChannelWeb, NormalizeChannel(""))
	assert.Equal(t, ChannelWeb, NormalizeChannel("web"))
	assert.Equal(t, ChannelMovil, NormalizeChannel(" movil "))
	assert.Equal(t, ChannelMovil, NormalizeChannel("MOVIL"))
	assert.Equal(t, ChannelWeb, NormalizeChannel("telefono"))
}

func TestCancelledBoundary(t *testing.T) {
	assert.True(t, entersCancelled(StatusPendiente, StatusCancelada))
	assert.True(t, entersCancelled(StatusEnviada, StatusCancelada))
	assert.False(t, entersCancelled(StatusCancelada, StatusCancelada))
	assert.True(t, leavesCancelled(StatusCancelada, StatusPendiente))
	assert.False(t, leavesCancelled(StatusPendiente, StatusConfirmada))
}

package gorouter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config[struct{}]{})
	assert.Error(t, err, "router and controller are required")
}

func TestParseAcceptLanguage(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"es-MX,es;q=0.9,en;q=0.8": "es-mx",
		" ;q=0.5, fr":             "fr",
		"EN":                      "en",
	}
	for header, want := range cases {
		assert.Equal(t, want, parseAcceptLanguage(header), header)
	}
}

func TestDefaultRouteConfigKeepsOverrides(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{HTML: "/home", WebSocket: "/events"})
	assert.Equal(t, "/home", routes.HTML)
	assert.Equal(t, "/events", routes.WebSocket)
	assert.Equal(t, "/dashboard/widgets/:id/move", routes.Move)
	assert.Equal(t, "/dashboard/_board", routes.Board)
}

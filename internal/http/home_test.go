package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeSlide(t *testing.T, b string) string {
	t.Helper()
	const marker = ` active" aria-current="true"`
	i := strings.Index(b, marker)
	require.GreaterOrEqual(t, i, 0, "no active slide")
	start := strings.LastIndex(b[:i], `<section id="`)
	require.GreaterOrEqual(t, start, 0)
	id := b[start+len(`<section id="`):]
	return id[:strings.Index(id, `"`)]
}

func TestHomeSlides(t *testing.T) {
	a := newTestApp(t)
	cases := map[string]string{
		"/":                  "hero",
		"/?slide=3":          "flavor-3",
		"/?slide=99":         "social",
		"/?slide=-4":         "hero",
		"/?slide=2&nav=next": "flavor-3",
		"/?slide=2&nav=prev": "flavor-1",
		"/?slide=0&nav=prev": "hero",
		"/?nav=next":         "flavor-1",
		"/?slide=x":          "hero",
		"/?slide=flavor-5":   "flavor-5",
		"/?slide=social":     "social",
	}
	for path, want := range cases {
		resp := a.get(t, path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, want, activeSlide(t, body(t, resp)), path)
	}
}

func TestHomeListsEveryFlavor(t *testing.T) {
	a := newTestApp(t)
	b := body(t, a.get(t, "/"))
	for _, name := range []string{"Chocolate", "Berry", "Strawberry", "Mango", "Pistachio", "Caramel", "Nuts"} {
		assert.Contains(t, b, "<h2>"+name+"</h2>")
	}
	assert.Contains(t, b, `href="/buy/5"`)
	assert.Contains(t, b, "650 DZD")
	assert.NotContains(t, b, `rel="prev"`, "no previous arrow on the first slide")
}

func TestLocalizedHome(t *testing.T) {
	a := newTestApp(t)
	b := body(t, a.get(t, "/ar"))
	assert.Contains(t, b, `dir="rtl"`)
	assert.Contains(t, b, `href="/ar/buy/1"`)
	assert.Contains(t, b, "<h2>شوكولاتة</h2>")
}

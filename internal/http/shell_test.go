package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocaleFromAcceptLanguage(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ar-DZ,ar;q=0.9,en;q=0.8")
	b := body(t, a.do(t, req))
	assert.Contains(t, b, `<html lang="ar" dir="rtl"`)
}

func TestUnsupportedPreferredLanguageFallsBack(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "fr,ar")
	b := body(t, a.do(t, req))
	assert.Contains(t, b, `<html lang="en" dir="ltr"`)
}

func TestLocaleCookieWins(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ar")
	req.AddCookie(&http.Cookie{Name: "locale", Value: "en"})
	b := body(t, a.do(t, req))
	assert.Contains(t, b, `<html lang="en" dir="ltr"`)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ar")
	req.AddCookie(&http.Cookie{Name: "locale", Value: "xx"})
	assert.Contains(t, body(t, a.do(t, req)), `<html lang="en" dir="ltr"`)
}

func TestSetLocale(t *testing.T) {
	a := newTestApp(t)
	cases := []struct{ redirect, want string }{
		{"/buy/1", "/buy/1"},
		{"/en/buy/2", "/ar/buy/2"},
		{"/en", "/ar"},
		{"//evil.example", "/"},
		{"https://evil.example", "/"},
	}
	for _, tc := range cases {
		resp := a.postForm(t, "/locale", url.Values{"locale": {"ar"}, "redirect": {tc.redirect}})
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, tc.want, resp.Header.Get("Location"), tc.redirect)

		c := cookie(resp, "locale")
		require.NotNil(t, c)
		assert.Equal(t, "ar", c.Value)
		assert.Equal(t, 31536000, c.MaxAge)
		assert.Equal(t, "/", c.Path)
	}

	bad := a.postForm(t, "/locale", url.Values{"locale": {"fr"}})
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
	assert.Nil(t, cookie(bad, "locale"))
}

func TestTheme(t *testing.T) {
	a := newTestApp(t)
	assert.Contains(t, body(t, a.get(t, "/")), `data-theme="system"`)

	resp := a.postForm(t, "/theme", url.Values{"theme": {"dark"}, "redirect": {"/"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	c := cookie(resp, "theme")
	require.NotNil(t, c)
	assert.Equal(t, "dark", c.Value)

	assert.Contains(t, body(t, a.get(t, "/", c)), `data-theme="dark"`)
	assert.Contains(t, body(t, a.get(t, "/", &http.Cookie{Name: "theme", Value: "neon"})), `data-theme="system"`)

	assert.Equal(t, http.StatusBadRequest, a.postForm(t, "/theme", url.Values{"theme": {"neon"}}).StatusCode)
}

func TestFormPostWithoutCSRFIsRejected(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/locale", strings.NewReader("locale=ar"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := a.do(t, req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Security check failed")
}

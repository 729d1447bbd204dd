package web

import (
	"net/http"
	"net/url"
	"strings"
)

// flashCookieName is the one-shot cookie used to carry a message across a
// redirect, in the manner of framework "messages" support.
const flashCookieName = "taskboard_flash"

// Flash levels
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

// setFlash queues a message for the next rendered page.
func setFlash(w http.ResponseWriter, level, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(level + "|" + message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending flash message, if any, and clears it.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	level, message, found := strings.Cut(value, "|")
	if !found || message == "" {
		return nil
	}
	return &Flash{Level: level, Message: message}
}

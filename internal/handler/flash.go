package handler

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// Flash messages ride a one-shot cookie: set on redirect, read and cleared on
// the next page render. There is no server-side session to hold them — auth
// is a stateless token — so the browser carries the message across the
// redirect instead.

const flashCookie = "flash"

// Flash is a one-time user notice. Kind is "success" or "error" and selects
// the banner style in the templates.
type Flash struct {
	Kind    string
	Message string
}

// setFlash queues a flash message for the next rendered page.
func setFlash(w http.ResponseWriter, kind, message string) {
	value := base64.URLEncoding.EncodeToString([]byte(kind + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending flash message, if any.
func popFlash(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return Flash{}, false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return Flash{}, false
	}

	kind, message, ok := strings.Cut(string(decoded), "|")
	if !ok || message == "" {
		return Flash{}, false
	}

	return Flash{Kind: kind, Message: message}, true
}

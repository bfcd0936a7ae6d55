package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/item-shop/internal/auth"
	"github.com/sakif/item-shop/internal/service"
)

// AuthHandler processes the registration and login forms, logout, and the
// optional GitHub OAuth flow.
type AuthHandler struct {
	auth       *service.AuthService
	github     *auth.GitHubProvider // nil when GitHub sign-in is not configured
	sessionTTL int                  // cookie Max-Age in seconds
	logger     *slog.Logger
}

func NewAuthHandler(authSvc *service.AuthService, github *auth.GitHubProvider, sessionTTLSeconds int, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:       authSvc,
		github:     github,
		sessionTTL: sessionTTLSeconds,
		logger:     logger,
	}
}

// HandleRegister processes the registration form.
//
// POST /register (form fields: username, password)
//
// Validation failures flash the message and redirect back to the form with no
// state change. Success stores the account, establishes a session, and lands
// on the shop page.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setFlash(w, "error", "invalid form submission")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	result, err := h.auth.Register(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		setFlash(w, "error", userMessage(err, "registration failed"))
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	h.setSessionCookie(w, result.Token)
	setFlash(w, "success", "Account created. You are now logged in!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogin processes the login form.
//
// POST /login (form fields: username, password)
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setFlash(w, "error", "invalid form submission")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	result, err := h.auth.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		setFlash(w, "error", userMessage(err, "login failed"))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.setSessionCookie(w, result.Token)
	setFlash(w, "success", "Logged in!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
//
// GET /logout (session required)
//
// The token itself stays valid until it expires; without the cookie the
// browser can no longer send it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	setFlash(w, "success", "Logged out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleGitHubLogin starts the OAuth flow: a random state value goes into a
// short-lived cookie for the CSRF check on callback, then the browser is sent
// to GitHub.
//
// GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow: verify state, exchange the
// code for a profile, upsert the account, establish a session.
//
// GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("github callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		setFlash(w, "error", "GitHub sign-in was cancelled")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed", slog.String("error", err.Error()))
		setFlash(w, "error", "GitHub sign-in failed")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	result, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("github callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		setFlash(w, "error", "GitHub sign-in failed")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.setSessionCookie(w, result.Token)
	setFlash(w, "success", "Logged in!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   h.sessionTTL,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true behind HTTPS; left off for local development.
	})
}

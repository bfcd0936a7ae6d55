package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/item-shop/internal/auth"
	"github.com/sakif/item-shop/internal/repository/sqlite"
	"github.com/sakif/item-shop/internal/service"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *auth.TokenService) {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-0123456789abcdef", time.Hour)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	svc := service.NewAuthService(db, tokens, passwords, discardLogger())
	return NewAuthHandler(svc, nil, 3600, discardLogger()), tokens
}

func postForm(h http.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	return nil
}

func flashMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var flashVal string
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie && c.Value != "" {
			flashVal = c.Value
		}
	}
	if flashVal == "" {
		return ""
	}

	// Round-trip through popFlash so the test reads what the page would show.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: flashVal})
	flash, ok := popFlash(httptest.NewRecorder(), req)
	if !ok {
		return ""
	}
	return flash.Message
}

func TestHandleRegister_Success(t *testing.T) {
	h, tokens := newAuthHandler(t)

	rec := postForm(h.HandleRegister, "/register", url.Values{
		"username": {"alice"},
		"password": {"secret1"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie, "a session cookie should be set")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	_, err := tokens.Validate(cookie.Value)
	assert.NoError(t, err, "the cookie should hold a valid session token")
}

func TestHandleRegister_ValidationFlash(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := postForm(h.HandleRegister, "/register", url.Values{
		"username": {"ab"},
		"password": {"secret1"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/register", rec.Header().Get("Location"), "failure redirects back to the form")
	assert.Nil(t, sessionCookie(t, rec), "no session on failed registration")
	assert.Contains(t, flashMessage(t, rec), "at least 3 characters")
}

func TestHandleRegister_DuplicateUsernameFlash(t *testing.T) {
	h, _ := newAuthHandler(t)
	form := url.Values{"username": {"alice"}, "password": {"secret1"}}

	rec := postForm(h.HandleRegister, "/register", form)
	require.Equal(t, "/", rec.Header().Get("Location"))

	rec = postForm(h.HandleRegister, "/register", form)
	assert.Equal(t, "/register", rec.Header().Get("Location"))
	assert.Contains(t, flashMessage(t, rec), "taken")
}

func TestHandleLogin(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := postForm(h.HandleRegister, "/register", url.Values{
		"username": {"alice"},
		"password": {"secret1"},
	})
	require.NotNil(t, sessionCookie(t, rec))

	rec = postForm(h.HandleLogin, "/login", url.Values{
		"username": {"alice"},
		"password": {"secret1"},
	})
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.NotNil(t, sessionCookie(t, rec))

	// Wrong password: back to the form with the generic message.
	rec = postForm(h.HandleLogin, "/login", url.Values{
		"username": {"alice"},
		"password": {"wrong00"},
	})
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Nil(t, sessionCookie(t, rec))
	assert.Equal(t, "invalid username or password", flashMessage(t, rec))
}

func TestHandleLogin_UnknownUserSameMessage(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := postForm(h.HandleLogin, "/login", url.Values{
		"username": {"nobody"},
		"password": {"secret1"},
	})

	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, "invalid username or password", flashMessage(t, rec))
}

func TestHandleLogout(t *testing.T) {
	h, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req = req.WithContext(auth.WithUserID(context.Background(), "user-1"))
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge, "the session cookie should be expired")
}

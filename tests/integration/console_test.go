//go:build integration

package integration

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/superadmin-console/internal/notify"
	"github.com/BradenHooton/superadmin-console/internal/storage/postgres"
	"github.com/BradenHooton/superadmin-console/internal/throttle"
)

func newConsole(t *testing.T, opts ...ServerOption) *TestServer {
	t.Helper()
	require.NoError(t, testDB.CleanupTables(context.Background()))

	fb := NewFakeBackend(SeedSchools(12), SeedNotifications(3))
	ts := NewTestServer(postgres.NewStore(testDB.Pool), fb, opts...)
	t.Cleanup(func() {
		ts.Close()
		fb.Close()
	})
	return ts
}

func TestConsole_SessionLifecycle(t *testing.T) {
	ts := newConsole(t)
	b := ts.NewBrowser(t)

	var body map[string]any
	resp := b.Do(http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	DecodeBody(t, resp, &body)
	assert.Equal(t, "session_expired", body["error"])
	assert.Equal(t, "/", body["data"].(map[string]any)["redirect"])

	login := b.Login(SuperAdminEmail, SuperAdminPassword, http.StatusOK)
	assert.Equal(t, "Welcome back", login["message"])

	resp = b.Do(http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = b.Do(http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	DecodeBody(t, resp, &body)
	assert.Equal(t, SuperAdminEmail, body["data"].(map[string]any)["email"])

	resp = b.Do(http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	DecodeBody(t, resp, &body)
	assert.Equal(t, "Signed out", body["message"])

	resp = b.Do(http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestConsole_LoginRequiresCSRF(t *testing.T) {
	ts := newConsole(t)
	b := ts.NewBrowser(t)
	b.csrf = ""

	b.Login(SuperAdminEmail, SuperAdminPassword, http.StatusForbidden)
}

func TestConsole_LockoutAfterThreeFailures(t *testing.T) {
	ts := newConsole(t, WithLockDuration(2*time.Second))
	b := ts.NewBrowser(t)

	first := b.Login(SuperAdminEmail, "wrong-password", http.StatusUnauthorized)
	assert.Equal(t, "Invalid email or password", first["message"])
	b.Login(SuperAdminEmail, "wrong-password", http.StatusUnauthorized)

	locked := b.Login(SuperAdminEmail, "wrong-password", http.StatusLocked)
	view := locked["data"].(map[string]any)
	assert.Equal(t, true, view["locked"])
	assert.Equal(t, throttle.LabelLocked, view["label"])

	// the right password is refused while locked
	b.Login(SuperAdminEmail, SuperAdminPassword, http.StatusLocked)

	// other browsers are not affected
	other := ts.NewBrowser(t)
	other.Login(SuperAdminEmail, SuperAdminPassword, http.StatusOK)

	require.Eventually(t, func() bool {
		var state map[string]any
		resp := b.Do(http.MethodGet, "/api/login/state", nil)
		DecodeBody(t, resp, &state)
		return state["data"].(map[string]any)["locked"] == false
	}, 5*time.Second, 100*time.Millisecond)

	b.Login(SuperAdminEmail, SuperAdminPassword, http.StatusOK)
}

func TestConsole_RejectsOtherRoles(t *testing.T) {
	ts := newConsole(t)
	b := ts.NewBrowser(t)

	b.Login(SchoolAdminEmail, SuperAdminPassword, http.StatusForbidden)

	resp := b.Do(http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestConsole_Schools(t *testing.T) {
	ts := newConsole(t)
	b := ts.NewBrowser(t)
	b.Login(SuperAdminEmail, SuperAdminPassword, http.StatusOK)

	var page struct {
		Data struct {
			Items []struct {
				ID       string `json:"_id"`
				IsActive bool   `json:"isActive"`
			} `json:"items"`
			Page       int `json:"page"`
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"data"`
	}

	resp := b.Do(http.MethodGet, "/api/schools?page=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	DecodeBody(t, resp, &page)
	assert.Equal(t, 12, page.Data.Total)
	assert.Equal(t, 2, page.Data.TotalPages)
	assert.Len(t, page.Data.Items, 2)

	resp = b.Do(http.MethodGet, "/api/schools?search=OFFICE07", nil)
	DecodeBody(t, resp, &page)
	require.Len(t, page.Data.Items, 1)
	assert.Equal(t, "sch-07", page.Data.Items[0].ID)
	assert.True(t, page.Data.Items[0].IsActive)

	var ack map[string]any
	resp = b.Do(http.MethodPut, "/api/schools/sch-07/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	DecodeBody(t, resp, &ack)
	assert.Equal(t, "Status updated", ack["message"])

	resp = b.Do(http.MethodGet, "/api/schools?search=office07", nil)
	DecodeBody(t, resp, &page)
	require.Len(t, page.Data.Items, 1)
	assert.False(t, page.Data.Items[0].IsActive)

	resp = b.Do(http.MethodDelete, "/api/schools/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestConsole_Notifications(t *testing.T) {
	ts := newConsole(t)
	b := ts.NewBrowser(t)
	b.Login(SuperAdminEmail, SuperAdminPassword, http.StatusOK)

	var summary struct {
		Message string         `json:"message"`
		Error   string         `json:"error"`
		Data    notify.Summary `json:"data"`
	}

	resp := b.Do(http.MethodGet, "/api/notifications/unread", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	DecodeBody(t, resp, &summary)
	assert.Equal(t, 3, summary.Data.Unread)
	assert.Equal(t, "3", summary.Data.Badge)

	resp = b.Do(http.MethodPut, "/api/notifications/n2/read", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	DecodeBody(t, resp, &summary)
	assert.Equal(t, notify.MessageMarkedRead, summary.Message)
	assert.Equal(t, "2", summary.Data.Badge)

	resp = b.Do(http.MethodPut, "/api/notifications/read-all", nil)
	require.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)
	DecodeBody(t, resp, &summary)
	assert.Equal(t, "confirmation_required", summary.Error)

	resp = b.Do(http.MethodPut, "/api/notifications/read-all", map[string]bool{"confirm": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	DecodeBody(t, resp, &summary)
	assert.Equal(t, "Inbox cleared", summary.Message)
	assert.Equal(t, 0, summary.Data.Unread)
	assert.Empty(t, summary.Data.Badge)

	resp = b.Do(http.MethodGet, "/api/notifications", nil)
	DecodeBody(t, resp, &summary)
	assert.Len(t, summary.Data.Items, 3)
	assert.Equal(t, notify.ModeAll, summary.Data.Mode)
}

func TestConsole_BackendRevocationEndsSession(t *testing.T) {
	ts := newConsole(t)
	b := ts.NewBrowser(t)
	b.Login(SuperAdminEmail, SuperAdminPassword, http.StatusOK)

	ts.Backend.Revoke()

	var body map[string]any
	resp := b.Do(http.MethodGet, "/api/schools", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	DecodeBody(t, resp, &body)
	assert.Equal(t, "session_expired", body["error"])

	resp = b.Do(http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestConsole_EventStreamExpiresOnLogout(t *testing.T) {
	ts := newConsole(t)
	b := ts.NewBrowser(t)
	b.Login(SuperAdminEmail, SuperAdminPassword, http.StatusOK)

	stream := b.Do(http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, stream.StatusCode)
	defer stream.Body.Close()
	assert.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))

	events := make(chan string, 16)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(stream.Body)
		for scanner.Scan() {
			if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
				events <- name
			}
		}
	}()

	require.Equal(t, "notifications", nextEvent(t, events))

	// logging out in another tab of the same browser
	resp := b.Do(http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	for {
		name := nextEvent(t, events)
		if name == "expired" {
			return
		}
	}
}

func nextEvent(t *testing.T, events <-chan string) string {
	t.Helper()
	select {
	case name, ok := <-events:
		require.True(t, ok, "stream closed")
		return name
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an event")
		return ""
	}
}

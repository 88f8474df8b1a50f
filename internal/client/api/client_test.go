package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 5*time.Second), srv
}

func TestLogin_StoresTokens(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "a1", "refresh_token": "r1"})
	}))
	defer srv.Close()

	if err := c.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !c.IsLoggedIn() {
		t.Error("expected logged in")
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer srv.Close()

	err := c.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("err = %v, want ErrorUnauthorized", err)
	}
	if c.IsLoggedIn() {
		t.Error("must not be logged in after failed login")
	}
}

func TestView_SendsBearer(t *testing.T) {
	var gotAuth string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(ViewResponse{
			Buckets:  Buckets{Schedule: []string{"09:00 PM gym"}},
			Settings: Settings{TimeFormat: "12h"},
		})
	}))
	defer srv.Close()
	c.tokens = tokenPair{AccessToken: "a1"}

	resp, err := c.View(context.Background())
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if gotAuth != "Bearer a1" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if len(resp.Buckets.Schedule) != 1 || resp.Buckets.Schedule[0] != "09:00 PM gym" {
		t.Errorf("buckets = %+v", resp.Buckets)
	}
}

func TestDo_RefreshesOnceOn401(t *testing.T) {
	calls := 0
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/lines":
			calls++
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(ViewResponse{})
		case "/api/refresh":
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "fresh", "refresh_token": "r2"})
		}
	}))
	defer srv.Close()
	c.tokens = tokenPair{AccessToken: "stale", RefreshToken: "r1"}

	if _, err := c.View(context.Background()); err != nil {
		t.Fatalf("View: %v", err)
	}
	if calls != 2 {
		t.Errorf("lines calls = %d, want 2", calls)
	}
	if c.tokens.AccessToken != "fresh" {
		t.Errorf("access token = %q", c.tokens.AccessToken)
	}
}

func TestImport_CursorInQuery(t *testing.T) {
	var gotCursor string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCursor = r.URL.Query().Get("cursor")
		_ = json.NewEncoder(w).Encode(ImportResult{AddedTimed: 1, NextCursor: "p2"})
	}))
	defer srv.Close()
	c.tokens = tokenPair{AccessToken: "a1"}

	res, err := c.Import(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if gotCursor != "p1" {
		t.Errorf("cursor = %q", gotCursor)
	}
	if res.NextCursor != "p2" {
		t.Errorf("next cursor = %q", res.NextCursor)
	}
}

func TestFeed_PlainBody(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR\n"))
	}))
	defer srv.Close()
	c.tokens = tokenPair{AccessToken: "a1"}

	feed, err := c.Feed(context.Background())
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if feed == "" || feed[:15] != "BEGIN:VCALENDAR" {
		t.Errorf("feed = %q", feed)
	}
}

func TestServerDown_RemoteUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, time.Second)

	err := c.Register(context.Background(), "alice", "pw")
	if !errors.Is(err, common.ErrorRemoteUnavailable) {
		t.Fatalf("err = %v, want ErrorRemoteUnavailable", err)
	}
}

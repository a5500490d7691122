package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/turfbook/turfbook/pkg/domain"
)

// memTokens is an in-memory TokenSource for tests.
type memTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func (m *memTokens) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

func (m *memTokens) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

func (m *memTokens) SetTokens(access, refresh string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	m.refresh = refresh
}

func writeEnvelope(w http.ResponseWriter, message string, data any) {
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"success": true,
		"message": message,
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"message": message}) //nolint:errcheck
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var in domain.LoginInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "bad payload")
			return
		}
		if in.Email != "a@b.com" || in.Password != "Abcd1234!" {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeEnvelope(w, "Login successful", map[string]any{
			"user":         domain.User{ID: "u1", Email: in.Email, Name: "Test User", Role: domain.RoleUser},
			"accessToken":  "access-1",
			"refreshToken": "refresh-1",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, &memTokens{})
	res, err := c.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "Abcd1234!"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if res.User.ID != "u1" {
		t.Errorf("User.ID = %q, want u1", res.User.ID)
	}
	if res.AccessToken != "access-1" || res.RefreshToken != "refresh-1" {
		t.Errorf("tokens = %q/%q, want access-1/refresh-1", res.AccessToken, res.RefreshToken)
	}
	if res.Message != "Login successful" {
		t.Errorf("Message = %q, want Login successful", res.Message)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	}))
	defer srv.Close()

	c := New(srv.URL, &memTokens{refresh: "refresh-1"})
	expired := false
	c.OnAuthExpired(func() { expired = true })

	_, err := c.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "wrong"})
	if err == nil {
		t.Fatal("expected error for rejected credentials")
	}
	if !IsStatus(err, 401) {
		t.Errorf("err = %v, want HTTP 401", err)
	}
	// A 401 from an auth endpoint must never trigger refresh or forced
	// logout.
	if expired {
		t.Error("onAuthExpired fired for an auth-endpoint 401")
	}
	if got := UserMessage(err, "Login failed"); got != "invalid credentials" {
		t.Errorf("UserMessage = %q, want server message", got)
	}
}

func TestRefreshThenReplayOnce(t *testing.T) {
	var refreshCalls, meCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh-token":
			refreshCalls.Add(1)
			writeEnvelope(w, "refreshed", map[string]string{
				"accessToken":  "access-2",
				"refreshToken": "refresh-2",
			})
		case "/users/me":
			meCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer access-2" {
				writeError(w, http.StatusUnauthorized, "token expired")
				return
			}
			writeEnvelope(w, "ok", domain.User{ID: "u1", Name: "Test"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tokens := &memTokens{access: "access-1", refresh: "refresh-1"}
	c := New(srv.URL, tokens)

	me, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error: %v", err)
	}
	if me.ID != "u1" {
		t.Errorf("ID = %q, want u1", me.ID)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if got := meCalls.Load(); got != 2 {
		t.Errorf("/users/me calls = %d, want 2 (original + one replay)", got)
	}
	if tokens.AccessToken() != "access-2" || tokens.RefreshToken() != "refresh-2" {
		t.Errorf("tokens not rotated: %q/%q", tokens.AccessToken(), tokens.RefreshToken())
	}
}

func TestRefreshFailureForcesLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh-token":
			writeError(w, http.StatusUnauthorized, "refresh token expired")
		case "/users/me":
			writeError(w, http.StatusUnauthorized, "token expired")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, &memTokens{access: "stale", refresh: "stale"})
	expired := false
	c.OnAuthExpired(func() { expired = true })

	_, err := c.Me(context.Background())
	if err == nil {
		t.Fatal("expected error after failed refresh")
	}
	if !strings.Contains(err.Error(), "session expired") {
		t.Errorf("err = %v, want session expired", err)
	}
	if !expired {
		t.Error("onAuthExpired did not fire")
	}
}

func TestReplayedRequestNeverRefreshesTwice(t *testing.T) {
	var refreshCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh-token":
			refreshCalls.Add(1)
			writeEnvelope(w, "refreshed", map[string]string{"accessToken": "access-2"})
		default:
			// Keep returning 401 even after refresh: the replay must
			// fail outright instead of looping.
			writeError(w, http.StatusUnauthorized, "still unauthorized")
		}
	}))
	defer srv.Close()

	c := New(srv.URL, &memTokens{access: "a", refresh: "r"})
	_, err := c.Me(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsStatus(err, 401) {
		t.Errorf("err = %v, want plain 401 from the replay", err)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", got)
	}
}

func TestConcurrent401sCoalesceIntoOneRefresh(t *testing.T) {
	const n = 5
	var refreshCalls atomic.Int32
	knocked := make(chan struct{}, n)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh-token":
			// Hold the refresh open until every request has taken its
			// 401, so all of them pile up on the one in-flight refresh.
			if refreshCalls.Add(1) == 1 {
				for i := 0; i < n; i++ {
					<-knocked
				}
			}
			writeEnvelope(w, "refreshed", map[string]string{"accessToken": "access-2"})
		case "/users/me":
			if r.Header.Get("Authorization") != "Bearer access-2" {
				knocked <- struct{}{}
				writeError(w, http.StatusUnauthorized, "token expired")
				return
			}
			writeEnvelope(w, "ok", domain.User{ID: "u1"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, &memTokens{access: "stale", refresh: "r"})

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Me(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("request %d: %v", i, err)
		}
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1 for %d concurrent 401s", got, n)
	}
}

func TestAvailabilityCachedAndInvalidatedByBooking(t *testing.T) {
	var availCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/availability"):
			availCalls.Add(1)
			available := availCalls.Load() == 1
			writeEnvelope(w, "ok", domain.TurfAvailability{
				Date: r.URL.Query().Get("date"),
				Slots: []domain.AvailabilitySlot{
					{StartTime: "10:00", EndTime: "11:00", Available: available, PricePerSlot: 500},
				},
			})
		case r.URL.Path == "/bookings":
			if r.Header.Get("Idempotency-Key") == "" {
				writeError(w, http.StatusBadRequest, "missing idempotency key")
				return
			}
			writeEnvelope(w, "Booking created", domain.Booking{ID: "b1", Status: domain.BookingPending})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, &memTokens{access: "tok"})
	ctx := context.Background()

	first, err := c.Availability(ctx, "t1", "2026-09-01")
	if err != nil {
		t.Fatalf("Availability() error: %v", err)
	}
	if !first.Slots[0].Available {
		t.Fatal("precondition: first snapshot should show the slot open")
	}

	// Second read is served from cache: no extra HTTP call.
	if _, err := c.Availability(ctx, "t1", "2026-09-01"); err != nil {
		t.Fatalf("Availability() cached read error: %v", err)
	}
	if got := availCalls.Load(); got != 1 {
		t.Fatalf("availability calls = %d, want 1 (second read cached)", got)
	}

	_, err = c.CreateBooking(ctx, domain.BookingInput{
		TurfID: "t1", Date: "2026-09-01", StartTime: "10:00", EndTime: "11:00",
	})
	if err != nil {
		t.Fatalf("CreateBooking() error: %v", err)
	}

	// Booking evicted the snapshot: the re-fetch hits the server and
	// never shows the just-booked slot as available.
	after, err := c.Availability(ctx, "t1", "2026-09-01")
	if err != nil {
		t.Fatalf("Availability() after booking error: %v", err)
	}
	if got := availCalls.Load(); got != 2 {
		t.Errorf("availability calls = %d, want 2 after invalidation", got)
	}
	if after.Slots[0].Available {
		t.Error("just-booked slot still shown as available")
	}
}

func TestInitPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/init/b1" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		writeEnvelope(w, "ok", map[string]string{"url": "https://pay.example.com/session/abc"})
	}))
	defer srv.Close()

	c := New(srv.URL, &memTokens{access: "tok"})
	url, err := c.InitPayment(context.Background(), "b1")
	if err != nil {
		t.Fatalf("InitPayment() error: %v", err)
	}
	if url != "https://pay.example.com/session/abc" {
		t.Errorf("url = %q", url)
	}
}

func TestInitPaymentMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, "ok", map[string]string{})
	}))
	defer srv.Close()

	c := New(srv.URL, &memTokens{access: "tok"})
	if _, err := c.InitPayment(context.Background(), "b1"); err == nil {
		t.Fatal("expected error for missing payment URL")
	}
}

func TestListTurfsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/turfs" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page param = %q, want 2", got)
		}
		if got := r.URL.Query().Get("q"); got != "arena" {
			t.Errorf("q param = %q, want arena", got)
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"success": true,
			"message": "ok",
			"data":    []domain.Turf{{ID: "t1", Name: "City Arena", Slug: "city-arena"}},
			"meta":    Meta{TotalItems: 11, TotalPages: 2, CurrentPage: 2, ItemsPerPage: 10},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, &memTokens{})
	turfs, meta, err := c.ListTurfs(context.Background(), ListTurfsOptions{Page: 2, Limit: 10, Search: "arena"})
	if err != nil {
		t.Fatalf("ListTurfs() error: %v", err)
	}
	if len(turfs) != 1 || turfs[0].Slug != "city-arena" {
		t.Errorf("turfs = %+v", turfs)
	}
	if meta == nil || meta.TotalPages != 2 || meta.CurrentPage != 2 {
		t.Errorf("meta = %+v, want totalPages=2 currentPage=2", meta)
	}
}

func TestValidationErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"message": "Slot is no longer available",
			"errors":  []map[string]any{{"path": []string{"startTime"}, "message": "already booked"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, &memTokens{access: "tok"})
	_, err := c.CreateBooking(context.Background(), domain.BookingInput{
		TurfID: "t1", Date: "2026-09-01", StartTime: "10:00", EndTime: "11:00",
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if !IsStatus(err, http.StatusConflict) {
		t.Errorf("err = %v, want 409", err)
	}
	if !strings.Contains(err.Error(), "already booked") {
		t.Errorf("err = %v, want field detail", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	// Header/claims/signature with exp 4102444800 (2100-01-01),
	// unsigned — TokenExpiry never verifies.
	tok := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJleHAiOjQxMDI0NDQ4MDB9.x"
	exp, ok := TokenExpiry(tok)
	if !ok {
		t.Fatal("TokenExpiry() failed to parse")
	}
	if exp.Year() != 2100 {
		t.Errorf("exp year = %d, want 2100", exp.Year())
	}

	if _, ok := TokenExpiry("garbage"); ok {
		t.Error("TokenExpiry() parsed garbage")
	}
}

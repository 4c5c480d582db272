package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RejectsBadURLs(t *testing.T) {
	assert.Nil(t, NewClient("", "tok", 0))
	assert.Nil(t, NewClient("   ", "tok", 0))
	assert.Nil(t, NewClient("not a url", "tok", 0))
	assert.NotNil(t, NewClient("https://sched.example.com/api/", "", 0))
}

func TestListShifts_SendsWindowAndToken(t *testing.T) {
	var gotPath, gotAuth, gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotFrom = r.URL.Query().Get("from")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"s1","title":"Night","start":"2025-03-02T19:00:00Z"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	shifts, err := c.ListShifts(context.Background(), "u 1", start, start.AddDate(0, 0, 7))
	require.NoError(t, err)

	assert.Equal(t, "/users/u 1/shifts", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "2025-03-01T00:00:00Z", gotFrom)
	require.Len(t, shifts, 1)
	assert.Equal(t, "u 1", shifts[0].UserID)
	assert.Equal(t, 19, shifts[0].Start.Hour())
}

func TestListAppointments_Decodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"a1","title":"Dentist","start":"2025-03-04T14:00:00Z","location":"Main St"}]`))
	}))
	defer srv.Close()

	appts, err := NewClient(srv.URL, "", time.Second).ListAppointments(context.Background(), "u1", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "Main St", appts[0].Location)
}

func TestGet_MapsStatusCodes(t *testing.T) {
	cases := map[int]error{
		http.StatusUnauthorized:    ErrUnauthorized,
		http.StatusForbidden:       ErrUnauthorized,
		http.StatusTooManyRequests: ErrRateLimited,
		http.StatusNotFound:        ErrNotFound,
	}
	for code, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
		}))
		_, err := NewClient(srv.URL, "", time.Second).ListShifts(context.Background(), "u1", time.Now(), time.Now())
		assert.ErrorIs(t, err, want, "status %d", code)
		srv.Close()
	}
}

func TestGet_UnexpectedStatusAndBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/u1/shifts" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	_, err := c.ListShifts(context.Background(), "u1", time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")

	_, err = c.ListAppointments(context.Background(), "u1", time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing appointments")
}

func TestGet_HonorsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", 50*time.Millisecond).ListShifts(context.Background(), "u1", time.Now(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

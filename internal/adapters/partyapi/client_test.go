package partyapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"partyplanner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken struct {
	token string
	err   error
}

func (s staticToken) Token() (string, error) { return s.token, s.err }

func newServer(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func body(s string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s))
	}
}

func status(code int) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

func TestClient_ListParties(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /cohort/events": body(`{"success":true,"data":[
			{"id":1,"name":"Picnic","date":"2025-09-12T18:30:00.000Z","description":"Sandwiches","location":"Park","cohortId":7},
			{"id":2,"name":null,"date":null}
		]}`),
	})
	c := NewClient(srv.URL+"/cohort", srv.Client(), nil)

	parties, err := c.ListParties(context.Background())
	require.NoError(t, err)
	require.Len(t, parties, 2)
	assert.Equal(t, int64(1), parties[0].ID)
	assert.Equal(t, "Picnic", domain.Str(parties[0].Name))
	assert.Equal(t, "2025-09-12T18:30:00.000Z", domain.Str(parties[0].Date))
	assert.Equal(t, "Park", domain.Str(parties[0].Location))
	assert.Nil(t, parties[1].Name)
	assert.Nil(t, parties[1].Description)
}

func TestClient_CollectionFailures(t *testing.T) {
	tests := []struct {
		name     string
		handler  func(http.ResponseWriter, *http.Request)
		wantKind domain.FetchErrorKind
		wantMsg  string
	}{
		{"server error", status(http.StatusInternalServerError), domain.KindStatus, "Failed to fetch guests (500)"},
		{"not found", status(http.StatusNotFound), domain.KindStatus, "Failed to fetch guests (404)"},
		{"data missing", body(`{"success":true}`), domain.KindShape, "Unexpected response format for guests."},
		{"data is object", body(`{"data":{"id":1}}`), domain.KindShape, "Unexpected response format for guests."},
		{"data is null", body(`{"data":null}`), domain.KindShape, "Unexpected response format for guests."},
		{"not json", body(`<html>`), domain.KindShape, "Unexpected response format for guests."},
		{"element has wrong type", body(`{"data":[{"id":"x"}]}`), domain.KindShape, "Unexpected response format for guests."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){"GET /guests": tt.handler})
			c := NewClient(srv.URL, srv.Client(), nil)

			guests, err := c.ListGuests(context.Background())
			require.Error(t, err)
			assert.Nil(t, guests)
			var fe *domain.FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.wantKind, fe.Kind)
			assert.Equal(t, tt.wantMsg, fe.Error())
		})
	}
}

func TestClient_ListEmptyCollection(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){"GET /rsvps": body(`{"data":[]}`)})
	c := NewClient(srv.URL, srv.Client(), nil)

	rsvps, err := c.ListRsvps(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rsvps)
}

func TestClient_ListRsvpsAndGuests(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /rsvps":  body(`{"data":[{"id":9,"guestId":1,"eventId":10}]}`),
		"GET /guests": body(`{"data":[{"id":1,"name":"A","email":"a@example.com"}]}`),
	})
	c := NewClient(srv.URL, srv.Client(), nil)

	rsvps, err := c.ListRsvps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Rsvp{{ID: 9, GuestID: 1, EventID: 10}}, rsvps)

	guests, err := c.ListGuests(context.Background())
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "a@example.com", domain.Str(guests[0].Email))
}

func TestClient_GetParty(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /events/5":  body(`{"data":{"id":5,"name":"Gala"}}`),
		"GET /events/6":  body(`{"data":null}`),
		"GET /events/7":  body(`{}`),
		"GET /events/8":  status(http.StatusNotFound),
		"GET /events/9":  body(`{"data":[1,2]}`),
		"GET /events/10": body(`{"data":{"id":10}}`),
	})
	c := NewClient(srv.URL, srv.Client(), nil)

	p, err := c.GetParty(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(5), p.ID)
	assert.Equal(t, "Gala", domain.Str(p.Name))

	for _, id := range []int64{6, 7, 9} {
		_, err = c.GetParty(context.Background(), id)
		require.Error(t, err, "id %d", id)
		assert.Equal(t, "Unexpected response format for party.", err.Error())
	}

	_, err = c.GetParty(context.Background(), 8)
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch party (404)", err.Error())

	p, err = c.GetParty(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, p.Name)
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, nil, nil)
	_, err := c.ListParties(context.Background())
	require.Error(t, err)
	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, domain.KindNetwork, fe.Kind)
	assert.Equal(t, domain.ResourceParties, fe.Resource)
}

func TestClient_BearerToken(t *testing.T) {
	var gotAuth string
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /events": func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"data":[]}`))
		},
	})

	c := NewClient(srv.URL, srv.Client(), staticToken{token: "tok-123"})
	_, err := c.ListParties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)

	c = NewClient(srv.URL, srv.Client(), staticToken{err: errors.New("no key")})
	_, err = c.ListParties(context.Background())
	require.Error(t, err)
	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, domain.KindNetwork, fe.Kind)
}

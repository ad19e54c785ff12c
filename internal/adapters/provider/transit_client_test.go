package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travel-time-service/internal/domain"
	"travel-time-service/internal/ports"
)

const transitSuccessBody = `{
	"result": {
		"path": [
			{
				"info": {"totalTime": 34},
				"subPath": [
					{"trafficType": 3, "distance": 400},
					{"trafficType": 1, "distance": 9200},
					{"trafficType": 3, "distance": 900}
				]
			},
			{
				"info": {"totalTime": 41},
				"subPath": [
					{"trafficType": 2, "distance": 11000},
					{"trafficType": 3, "distance": 250}
				]
			}
		]
	}
}`

func newTestTransitClient(t *testing.T, srvURL string) *TransitClient {
	t.Helper()

	c, err := NewTransitClient("test-key", srvURL, nil)
	if err != nil {
		t.Fatalf("new transit client: %v", err)
	}
	c.retry = RetryConfig{MaxAttempts: 2, Delay: time.Millisecond}
	return c
}

func TestTransitFindRoutesParsesPaths(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"apiKey": r.URL.Query().Get("apiKey"),
			"SX":     r.URL.Query().Get("SX"),
			"SY":     r.URL.Query().Get("SY"),
			"EX":     r.URL.Query().Get("EX"),
			"EY":     r.URL.Query().Get("EY"),
		}
		fmt.Fprint(w, transitSuccessBody)
	}))
	defer srv.Close()

	c := newTestTransitClient(t, srv.URL)

	routes, err := c.FindRoutes(
		context.Background(),
		domain.Coordinates{Lon: 127.02758, Lat: 37.49794},
		domain.Coordinates{Lon: 126.97843, Lat: 37.56668},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if routes.TooClose {
		t.Fatal("unexpected too-close result")
	}
	if len(routes.Paths) != 2 {
		t.Fatalf("paths = %d, want 2", len(routes.Paths))
	}
	if routes.Paths[0].TotalTimeMinutes != 34 {
		t.Fatalf("first path total = %v, want 34", routes.Paths[0].TotalTimeMinutes)
	}
	if len(routes.Paths[0].Legs) != 3 {
		t.Fatalf("first path legs = %d, want 3", len(routes.Paths[0].Legs))
	}
	if routes.Paths[0].Legs[1].Type != ports.TrafficSubway {
		t.Fatalf("second leg type = %d, want subway", routes.Paths[0].Legs[1].Type)
	}

	if gotQuery["apiKey"] != "test-key" {
		t.Fatalf("apiKey = %q", gotQuery["apiKey"])
	}
	if gotQuery["SX"] != "127.02758" || gotQuery["SY"] != "37.49794" {
		t.Fatalf("start params = %q/%q", gotQuery["SX"], gotQuery["SY"])
	}
	if gotQuery["EX"] != "126.97843" || gotQuery["EY"] != "37.56668" {
		t.Fatalf("end params = %q/%q", gotQuery["EX"], gotQuery["EY"])
	}
}

func TestTransitFindRoutesTooCloseVariant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": [{"code": -98, "message": "too close"}]}`)
	}))
	defer srv.Close()

	c := newTestTransitClient(t, srv.URL)

	routes, err := c.FindRoutes(context.Background(), domain.Coordinates{}, domain.Coordinates{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !routes.TooClose {
		t.Fatal("expected too-close result")
	}
	if len(routes.Paths) != 0 {
		t.Fatalf("paths = %d, want 0", len(routes.Paths))
	}
}

func TestTransitFindRoutesErrorCodeTranslation(t *testing.T) {
	cases := []struct {
		code int
		want domain.FailureKind
	}{
		{-8, domain.KindInvalidInput},
		{-9, domain.KindInvalidInput},
		{3, domain.KindNoRoute},
		{4, domain.KindNoRoute},
		{5, domain.KindNoRoute},
		{6, domain.KindNoRoute},
		{-99, domain.KindNoRoute},
		{777, domain.KindInternal},
	}

	for _, tc := range cases {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			fmt.Fprintf(w, `{"error": [{"code": %d, "message": "provider message"}]}`, tc.code)
		}))

		c := newTestTransitClient(t, srv.URL)

		_, err := c.FindRoutes(context.Background(), domain.Coordinates{}, domain.Coordinates{})
		if got := domain.KindOf(err); got != tc.want {
			t.Errorf("code %d: kind = %v, want %v", tc.code, got, tc.want)
		}
		// Permanent failures are never retried.
		if calls != 1 {
			t.Errorf("code %d: calls = %d, want 1", tc.code, calls)
		}

		srv.Close()
	}
}

func TestTransitFindRoutesRetriesTransientOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"error": [{"code": 500, "message": "upstream broke"}]}`)
			return
		}
		fmt.Fprint(w, transitSuccessBody)
	}))
	defer srv.Close()

	c := newTestTransitClient(t, srv.URL)

	routes, err := c.FindRoutes(context.Background(), domain.Coordinates{}, domain.Coordinates{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routes.Paths) != 2 {
		t.Fatalf("paths = %d, want 2", len(routes.Paths))
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestTransitFindRoutesSurfacesTransientAfterOneRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestTransitClient(t, srv.URL)

	_, err := c.FindRoutes(context.Background(), domain.Coordinates{}, domain.Coordinates{})
	if !domain.IsTransient(err) {
		t.Fatalf("kind = %v, want transient", domain.KindOf(err))
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want exactly 2", calls)
	}
}

func TestTransitFindRoutesEmptyEnvelopeIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result": {"path": []}}`)
	}))
	defer srv.Close()

	c := newTestTransitClient(t, srv.URL)

	_, err := c.FindRoutes(context.Background(), domain.Coordinates{}, domain.Coordinates{})
	if !domain.IsTransient(err) {
		t.Fatalf("kind = %v, want transient", domain.KindOf(err))
	}
}

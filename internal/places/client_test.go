package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func placesServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/textsearch/json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.URL.Query().Get("query") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"results":[{
			"place_id":"place-1",
			"name":"Cafe Rift",
			"formatted_address":"1 Canal St",
			"geometry":{"location":{"lat":52.1,"lng":4.3}}
		}]}`))
	})
	mux.HandleFunc("/details/json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("place_id") != "place-1" {
			w.Write([]byte(`{"result":{}}`))
			return
		}
		w.Write([]byte(`{"result":{
			"place_id":"place-1",
			"name":"Cafe Rift",
			"formatted_address":"1 Canal St",
			"geometry":{"location":{"lat":52.1,"lng":4.3}}
		}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch(t *testing.T) {
	srv := placesServer(t)
	client := NewClient(srv.URL, "test-key")

	results, err := client.Search(context.Background(), "cafe rift")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one candidate, got %d", len(results))
	}
	if results[0].ID != "place-1" || results[0].Lat != 52.1 {
		t.Fatalf("unexpected candidate: %+v", results[0])
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	client := NewClient("http://unused", "test-key")
	if _, err := client.Search(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestSearchBadKey(t *testing.T) {
	srv := placesServer(t)
	client := NewClient(srv.URL, "wrong-key")

	if _, err := client.Search(context.Background(), "cafe"); err == nil {
		t.Fatalf("expected error on rejected key")
	}
}

func TestDetails(t *testing.T) {
	srv := placesServer(t)
	client := NewClient(srv.URL, "test-key")

	place, err := client.Details(context.Background(), "place-1")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if place.Name != "Cafe Rift" || place.Address != "1 Canal St" {
		t.Fatalf("unexpected place: %+v", place)
	}
}

func TestDetailsUnknownPlace(t *testing.T) {
	srv := placesServer(t)
	client := NewClient(srv.URL, "test-key")

	if _, err := client.Details(context.Background(), "place-404"); err == nil {
		t.Fatalf("expected error for unknown place")
	}
}

package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testClient(serverURL string) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Client{
		baseURL:      serverURL,
		apiKey:       "test-key",
		primaryLang:  "es-ES",
		fallbackLang: "en-US",
		httpClient:   &http.Client{Timeout: 5 * time.Second},
		logger:       logger,
	}
}

func TestSearchMovieMergesLanguages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		switch r.URL.Query().Get("language") {
		case "es-ES":
			fmt.Fprint(w, `{"results":[{"id":1,"title":"El Origen","original_title":"Inception","release_date":"2010-07-16","popularity":50}]}`)
		case "en-US":
			// Repeats the primary hit plus one the primary search missed
			fmt.Fprint(w, `{"results":[{"id":1,"title":"Inception","original_title":"Inception","release_date":"2010-07-16","popularity":50},{"id":2,"title":"Inception: The Cobol Job","original_title":"Inception: The Cobol Job","release_date":"2010-12-07","popularity":10}]}`)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	candidates := client.SearchMovie(context.Background(), "Inception", 2010)

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 deduplicated candidates, got %d", len(candidates))
	}
	// The primary-language record wins for the shared id
	if candidates[0].TMDBID != 1 || candidates[0].Title != "El Origen" {
		t.Errorf("Expected primary-language Inception first, got %+v", candidates[0])
	}
	if candidates[1].TMDBID != 2 {
		t.Errorf("Expected the fallback-only candidate kept, got %+v", candidates[1])
	}
	if candidates[0].Confidence <= candidates[1].Confidence {
		t.Error("Expected ranking by descending confidence")
	}
}

func TestSearchMovieDropsYearWhenEmpty(t *testing.T) {
	var sawYearless bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("language") == "es-ES" && q.Get("year") == "" {
			sawYearless = true
			fmt.Fprint(w, `{"results":[{"id":3,"title":"Memento","original_title":"Memento","release_date":"2000-09-05","popularity":20}]}`)
			return
		}
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	candidates := client.SearchMovie(context.Background(), "Memento", 2001)

	if !sawYearless {
		t.Error("Expected a retry without the year filter")
	}
	if len(candidates) != 1 || candidates[0].TMDBID != 3 {
		t.Errorf("Expected the yearless hit, got %+v", candidates)
	}
}

func TestSearchMovieAbsorbsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL)
	candidates := client.SearchMovie(context.Background(), "Inception", 2010)
	if len(candidates) != 0 {
		t.Errorf("Expected zero results on outage, got %d", len(candidates))
	}
}

func TestSearchTVUsesAirDateFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/tv" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("language") == "es-ES" && q.Get("first_air_date_year") == "2016" {
			fmt.Fprint(w, `{"results":[{"id":63174,"name":"Lucifer","original_name":"Lucifer","first_air_date":"2016-01-25","popularity":40}]}`)
			return
		}
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	candidates := client.SearchTV(context.Background(), "Lucifer", 2016)

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	cand := candidates[0]
	if cand.TMDBID != 63174 || cand.Title != "Lucifer" || cand.Year != 2016 {
		t.Errorf("Unexpected candidate %+v", cand)
	}
	if cand.Confidence <= 0 {
		t.Errorf("Expected a ranked candidate, got confidence %f", cand.Confidence)
	}
}

func TestGetTVDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/63174" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id":63174,"name":"Lucifer","original_name":"Lucifer","first_air_date":"2016-01-25","number_of_seasons":6,"status":"Ended","genres":[{"id":80,"name":"Crime"},{"id":14,"name":"Fantasy"}]}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	details, err := client.GetTVDetails(context.Background(), 63174)
	if err != nil {
		t.Fatalf("GetTVDetails failed: %v", err)
	}

	if details.Name != "Lucifer" || details.Year != 2016 {
		t.Errorf("Unexpected details %+v", details)
	}
	if details.SeasonCount != 6 || details.Status != "Ended" {
		t.Errorf("Expected season count and status, got %d/%q", details.SeasonCount, details.Status)
	}
	if len(details.Genres) != 2 || details.Genres[0] != "Crime" {
		t.Errorf("Expected genre names, got %v", details.Genres)
	}
}

func TestGetSeasonDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/63174/season/2" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"episodes":[{"episode_number":1,"name":"Everything's Okay","overview":"Back from vacation.","air_date":"2016-09-19","runtime":42,"still_path":"/still.jpg"}]}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	episodes, err := client.GetSeasonDetails(context.Background(), 63174, 2)
	if err != nil {
		t.Fatalf("GetSeasonDetails failed: %v", err)
	}

	if len(episodes) != 1 {
		t.Fatalf("Expected 1 episode, got %d", len(episodes))
	}
	ep := episodes[0]
	if ep.EpisodeNumber != 1 || ep.Name != "Everything's Okay" {
		t.Errorf("Unexpected episode %+v", ep)
	}
	if ep.StillURL != imageBaseURL+"/still.jpg" {
		t.Errorf("Expected full still URL, got %q", ep.StillURL)
	}
}

func TestReleaseYear(t *testing.T) {
	if y := releaseYear("2010-07-16"); y != 2010 {
		t.Errorf("Expected 2010, got %d", y)
	}
	if y := releaseYear(""); y != 0 {
		t.Errorf("Expected 0 for empty date, got %d", y)
	}
}

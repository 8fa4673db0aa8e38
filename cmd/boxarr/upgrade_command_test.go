package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newUpgradeRadarr(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/qualityprofile", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "name": "HD-1080p"}, {"id": 2, "name": "Ultra-HD"}]`))
	})
	mux.HandleFunc("/api/v3/movie", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "title": "The Batman", "year": 2022, "hasFile": true, "qualityProfileId": 1},
			{"id": 2, "title": "Dune: Part Two", "year": 2024, "hasFile": false, "qualityProfileId": 1}
		]`))
	})
	mux.HandleFunc("/api/v3/movie/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 1, "title": "The Batman", "qualityProfileId": 2}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestUpgradeCommandMovesDownloadedMovies(t *testing.T) {
	server := newUpgradeRadarr(t)
	configPath := writeTestConfig(t, server.URL)

	out, _, err := runCLI(t, configPath, "upgrade")
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	requireContains(t, out, `Upgraded "The Batman": HD-1080p -> Ultra-HD`)
	requireContains(t, out, "1 upgraded, 0 failed")
	if strings.Contains(out, "Dune") {
		t.Fatal("expected movies without files to be left alone")
	}
}

package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key", 5*time.Second, true), server
}

func TestResolveOIDPermalink(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("permalink resolution must not call the server (got %s)", r.URL)
	}))

	tests := []struct {
		url  string
		want string
	}{
		{url: "https://media.example.edu/permalink/v126abc/", want: "v126abc"},
		{url: "https://media.example.edu/permalink/v126abc", want: "v126abc"},
		{url: "https://media.example.edu/permalink/v126abc/iframe/", want: "v126abc"},
	}
	for _, tt := range tests {
		got, err := client.ResolveOID(context.Background(), tt.url)
		if err != nil {
			t.Fatalf("ResolveOID(%q) returned error: %v", tt.url, err)
		}
		if got != tt.want {
			t.Fatalf("ResolveOID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestResolveOIDUnrecognizedURL(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unrecognized URLs must not call the server (got %s)", r.URL)
	}))

	_, err := client.ResolveOID(context.Background(), "https://media.example.edu/channels/#main")
	if err == nil {
		t.Fatal("expected error for unrecognized URL")
	}
	if got := CategoryOf(err); got != CategoryUnrecognizedURL {
		t.Fatalf("CategoryOf = %q, want %q", got, CategoryUnrecognizedURL)
	}
}

func TestResolveOIDVideolink(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/medias/get/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("slug"); got != "my-lecture" {
			t.Errorf("slug = %q, want %q", got, "my-lecture")
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q, want %q", got, "test-key")
		}
		w.Write([]byte(`{"info":{"oid":"v126abc","title":"My Lecture"}}`))
	}))

	got, err := client.ResolveOID(context.Background(), "https://media.example.edu/videos/my-lecture/")
	if err != nil {
		t.Fatalf("ResolveOID returned error: %v", err)
	}
	if got != "v126abc" {
		t.Fatalf("ResolveOID = %q, want %q", got, "v126abc")
	}
}

func TestResolveOIDVideolinkMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>error</html>"},
		{name: "missing info", body: `{"error":"not found"}`},
		{name: "missing oid", body: `{"info":{"title":"x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			_, err := client.ResolveOID(context.Background(), "https://media.example.edu/videos/my-lecture/")
			if got := CategoryOf(err); got != CategoryMalformedResponse {
				t.Fatalf("CategoryOf = %q, want %q (err: %v)", got, CategoryMalformedResponse, err)
			}
		})
	}
}

func TestResolveOIDVideolinkServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(server.URL, "test-key", 5*time.Second, true)
	server.Close()

	_, err := client.ResolveOID(context.Background(), "https://media.example.edu/videos/my-lecture/")
	if got := CategoryOf(err); got != CategoryServerUnreachable {
		t.Fatalf("CategoryOf = %q, want %q (err: %v)", got, CategoryServerUnreachable, err)
	}
}

func TestFetchTracksFiltersAudioPseudoTrack(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/medias/modes/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("html5"); got != "mp4_mp3_m3u8" {
			t.Errorf("html5 = %q, want %q", got, "mp4_mp3_m3u8")
		}
		w.Write([]byte(`{
			"names": ["720p", "audio", "1080p"],
			"720p": {"resource": {"url": "https://cdn.example.edu/720.mp4"}},
			"1080p": {"resource": {"url": "https://cdn.example.edu/1080.mp4"}},
			"audio": {"tracks": [{"language": "fre", "title": "Commentaire", "url": "https://cdn.example.edu/a.mp3"}]}
		}`))
	}))

	catalog, err := client.FetchTracks(context.Background(), "v126abc")
	if err != nil {
		t.Fatalf("FetchTracks returned error: %v", err)
	}
	if len(catalog.VideoTracks) != 2 {
		t.Fatalf("VideoTracks = %v, want 2 entries", catalog.VideoTracks)
	}
	for _, track := range catalog.VideoTracks {
		if track == "audio" {
			t.Fatal("pseudo-track \"audio\" must be filtered from video tracks")
		}
	}
	if catalog.VideoTracks[0] != "720p" || catalog.VideoTracks[1] != "1080p" {
		t.Fatalf("VideoTracks order = %v, want server order", catalog.VideoTracks)
	}
	if len(catalog.AudioTracks) != 1 {
		t.Fatalf("AudioTracks = %v, want 1 entry", catalog.AudioTracks)
	}
	track := catalog.AudioTracks[0]
	if track.Language == nil || *track.Language != "fre" {
		t.Fatalf("audio language = %v, want fre", track.Language)
	}
	if url, ok := catalog.VideoURL("720p"); !ok || url != "https://cdn.example.edu/720.mp4" {
		t.Fatalf("VideoURL(720p) = %q, %v", url, ok)
	}
	if url, ok := catalog.AudioURL(0); !ok || url != "https://cdn.example.edu/a.mp3" {
		t.Fatalf("AudioURL(0) = %q, %v", url, ok)
	}
}

func TestFetchTracksAudioAbsentOrNull(t *testing.T) {
	bodies := map[string]string{
		"absent":      `{"names": ["720p"], "720p": {"resource": {"url": "https://cdn.example.edu/720.mp4"}}}`,
		"null":        `{"names": ["720p"], "audio": null, "720p": {"resource": {"url": "https://cdn.example.edu/720.mp4"}}}`,
		"null tracks": `{"names": ["720p"], "audio": {"tracks": null}, "720p": {"resource": {"url": "https://cdn.example.edu/720.mp4"}}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			catalog, err := client.FetchTracks(context.Background(), "v126abc")
			if err != nil {
				t.Fatalf("FetchTracks returned error: %v", err)
			}
			if len(catalog.AudioTracks) != 0 {
				t.Fatalf("AudioTracks = %v, want empty", catalog.AudioTracks)
			}
		})
	}
}

func TestFetchTracksOptionalAudioFields(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"names": [], "audio": {"tracks": [{"url": "https://cdn.example.edu/a.mp3"}]}}`))
	}))

	catalog, err := client.FetchTracks(context.Background(), "v126abc")
	if err != nil {
		t.Fatalf("FetchTracks returned error: %v", err)
	}
	if len(catalog.AudioTracks) != 1 {
		t.Fatalf("AudioTracks = %v, want 1 entry", catalog.AudioTracks)
	}
	if catalog.AudioTracks[0].Language != nil {
		t.Fatalf("Language = %v, want nil for omitted field", catalog.AudioTracks[0].Language)
	}
	if catalog.AudioTracks[0].Title != nil {
		t.Fatalf("Title = %v, want nil for omitted field", catalog.AudioTracks[0].Title)
	}
}

func TestFetchTracksMalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	_, err := client.FetchTracks(context.Background(), "v126abc")
	if got := CategoryOf(err); got != CategoryMalformedResponse {
		t.Fatalf("CategoryOf = %q, want %q (err: %v)", got, CategoryMalformedResponse, err)
	}
}

func TestGetMediaInfoTitle(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("oid"); got != "v126abc" {
			t.Errorf("oid = %q, want %q", got, "v126abc")
		}
		w.Write([]byte(`{"info":{"oid":"v126abc","title":"Lecture 1"}}`))
	}))

	info, err := client.GetMediaInfo(context.Background(), "v126abc")
	if err != nil {
		t.Fatalf("GetMediaInfo returned error: %v", err)
	}
	if info.Title == nil || *info.Title != "Lecture 1" {
		t.Fatalf("Title = %v, want Lecture 1", info.Title)
	}
}

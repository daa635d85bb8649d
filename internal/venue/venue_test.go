package venue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/shaiso/Postline/internal/domain"
)

func TestClient_Post_Classification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantPermanent bool
	}{
		{"request timeout is transient", http.StatusRequestTimeout, false},
		{"rate limit is transient", http.StatusTooManyRequests, false},
		{"internal error is transient", http.StatusInternalServerError, false},
		{"bad gateway is transient", http.StatusBadGateway, false},
		{"bad request is permanent", http.StatusBadRequest, true},
		{"unauthorized is permanent", http.StatusUnauthorized, true},
		{"not found is permanent", http.StatusNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "venue says no", tt.status)
			}))
			defer srv.Close()

			err := NewClient(srv.URL, "token").Post(context.Background(), "/videos", map[string]any{})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := IsPermanent(err); got != tt.wantPermanent {
				t.Errorf("IsPermanent(%v) = %v, want %v", err, got, tt.wantPermanent)
			}
		})
	}
}

func TestClient_Post_Success(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "secret").Post(context.Background(), "/videos", map[string]any{"title": "t"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody["title"] != "t" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestClient_Post_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := NewClient(srv.URL, "").Post(context.Background(), "/tweets", map[string]any{})
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	if IsPermanent(err) {
		t.Errorf("network error classified as permanent: %v", err)
	}
}

func TestClient_Post_TruncatesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(strings.Repeat("x", 1000)))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").Post(context.Background(), "/videos", map[string]any{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Error()) > 300 {
		t.Errorf("error message too long (%d chars): %.80s...", len(err.Error()), err.Error())
	}
	if !strings.Contains(err.Error(), "...") {
		t.Errorf("expected truncation marker in %q", err.Error())
	}
}

func TestYouTube_FormatPayload(t *testing.T) {
	yt := NewYouTube("http://example.com", "key")
	got := yt.formatPayload(domain.PostPayload{
		Title:       "Go Channels",
		Description: "A deep dive.",
		Tags:        []string{"go", "concurrency"},
		Hashtags:    []string{"golang", "#concurrency"},
		VideoURL:    "https://cdn.example.com/v/1.mp4",
	})

	if got["title"] != "Go Channels" {
		t.Errorf("title = %v", got["title"])
	}
	if got["category"] != "Education" {
		t.Errorf("category = %v", got["category"])
	}
	wantDesc := "A deep dive.\n\n#golang #concurrency"
	if got["description"] != wantDesc {
		t.Errorf("description = %q, want %q", got["description"], wantDesc)
	}
	if !reflect.DeepEqual(got["tags"], []string{"go", "concurrency"}) {
		t.Errorf("tags = %v", got["tags"])
	}
}

func TestYouTube_FormatPayload_NoHashtags(t *testing.T) {
	yt := NewYouTube("http://example.com", "key")
	got := yt.formatPayload(domain.PostPayload{Title: "t", Description: "plain"})
	if got["description"] != "plain" {
		t.Errorf("description = %q, want %q", got["description"], "plain")
	}
}

func TestTwitter_FormatPayload(t *testing.T) {
	tw := NewTwitter("http://example.com", "bearer")
	got := tw.formatPayload(domain.PostPayload{
		Title:       "Go tip",
		Description: "Use errgroup.",
		Hashtags:    []string{"golang"},
	})

	want := "Go tip\nUse errgroup.\n#golang"
	if got["text"] != want {
		t.Errorf("text = %q, want %q", got["text"], want)
	}
}

func TestTwitter_FormatPayload_SkipsEmptyParts(t *testing.T) {
	tw := NewTwitter("http://example.com", "bearer")
	got := tw.formatPayload(domain.PostPayload{Title: "Only title"})
	if got["text"] != "Only title" {
		t.Errorf("text = %q", got["text"])
	}
}

func TestTelegram_FormatPayload(t *testing.T) {
	tg := NewTelegram("http://example.com", "bot-token", "@mychannel")
	got := tg.formatPayload(domain.PostPayload{
		Title:       "Go release",
		Description: "Notes inside.",
		Hashtags:    []string{"#golang"},
		VideoURL:    "https://cdn.example.com/v/2.mp4",
	})

	if got["chat_id"] != "@mychannel" {
		t.Errorf("chat_id = %v", got["chat_id"])
	}
	if got["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v", got["parse_mode"])
	}
	if got["video"] != "https://cdn.example.com/v/2.mp4" {
		t.Errorf("video = %v", got["video"])
	}
	wantCaption := "<b>Go release</b>\n\nNotes inside.\n\n#golang"
	if got["caption"] != wantCaption {
		t.Errorf("caption = %q, want %q", got["caption"], wantCaption)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewTwitter("http://example.com", ""))
	reg.Register(NewYouTube("http://example.com", ""))

	if !reg.Has("twitter") {
		t.Error("Has(twitter) = false")
	}
	if reg.Has("telegram") {
		t.Error("Has(telegram) = true for unregistered venue")
	}

	v, err := reg.Get("youtube")
	if err != nil {
		t.Fatalf("Get(youtube): %v", err)
	}
	if v.Name() != "youtube" {
		t.Errorf("Name() = %q", v.Name())
	}

	if _, err := reg.Get("mastodon"); !errors.Is(err, ErrUnknownVenue) {
		t.Errorf("Get(mastodon) = %v, want ErrUnknownVenue", err)
	}

	if got := reg.Names(); !reflect.DeepEqual(got, []string{"twitter", "youtube"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestErrorWrappers(t *testing.T) {
	base := errors.New("boom")

	if !IsPermanent(Permanent(base)) {
		t.Error("Permanent error not detected")
	}
	if IsPermanent(Transient(base)) {
		t.Error("Transient error detected as permanent")
	}
	if IsPermanent(base) {
		t.Error("unclassified error must not be permanent")
	}
	if Transient(nil) != nil || Permanent(nil) != nil {
		t.Error("wrapping nil must return nil")
	}
	if !errors.Is(Transient(base), base) || !errors.Is(Permanent(base), base) {
		t.Error("wrappers must unwrap to the base error")
	}
}

package domain

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPostPayload_Normalize(t *testing.T) {
	payload := PostPayload{
		Title:       "  Go Generics  ",
		Description: "\tWhat changed in 1.24\n",
		Tags:        []string{" go ", "", "generics", "  "},
		Hashtags:    []string{"#golang ", ""},
		VideoURL:    " https://cdn.example.com/v/42.mp4 ",
	}

	got := payload.Normalize()

	if got.Title != "Go Generics" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Description != "What changed in 1.24" {
		t.Errorf("Description = %q", got.Description)
	}
	if !reflect.DeepEqual(got.Tags, []string{"go", "generics"}) {
		t.Errorf("Tags = %v", got.Tags)
	}
	if !reflect.DeepEqual(got.Hashtags, []string{"#golang"}) {
		t.Errorf("Hashtags = %v", got.Hashtags)
	}
	if got.VideoURL != "https://cdn.example.com/v/42.mp4" {
		t.Errorf("VideoURL = %q", got.VideoURL)
	}
}

func TestPostPayload_NormalizeEmptyLists(t *testing.T) {
	got := PostPayload{Title: "t", Tags: []string{"", "  "}}.Normalize()
	if got.Tags != nil {
		t.Errorf("Tags = %v, want nil", got.Tags)
	}
	if got.Hashtags != nil {
		t.Errorf("Hashtags = %v, want nil", got.Hashtags)
	}
}

func TestNewPost(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2025, 6, 2, 13, 0, 0, 0, loc)

	post := NewPost(PostPayload{Title: " hello "}, now)

	if post.ID == uuid.Nil {
		t.Error("expected non-nil post ID")
	}
	if post.Payload.Title != "hello" {
		t.Errorf("Title = %q, payload not normalized", post.Payload.Title)
	}
	want := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	if !post.CreatedAt.Equal(want) || post.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt = %v, want %v in UTC", post.CreatedAt, want)
	}
}

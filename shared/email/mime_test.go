package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildDraftRewritesPlaceholders(t *testing.T) {
	dir := writeImages(t, "first.jpg", "second.png")
	body := "<p>Hello</p>[IMAGE1]<p>middle</p>[IMAGE2]<p>bye</p>"

	draft, err := BuildDraft("me@example.com", "you@example.com", "Hi",
		body, []string{filepath.Join(dir, "first.jpg"), filepath.Join(dir, "second.png")}, nil)
	if err != nil {
		t.Fatalf("BuildDraft failed: %v", err)
	}

	if strings.Contains(draft.BodyHTML, "[IMAGE") {
		t.Errorf("body still contains a raw placeholder: %s", draft.BodyHTML)
	}
	if len(draft.Images) != 2 {
		t.Fatalf("got %d inline images, want 2", len(draft.Images))
	}
	for _, img := range draft.Images {
		if !strings.Contains(draft.BodyHTML, fmt.Sprintf(`cid:%s`, img.ContentID)) {
			t.Errorf("body does not reference cid:%s", img.ContentID)
		}
	}
}

func TestBuildDraftDropsUnplacedImages(t *testing.T) {
	dir := writeImages(t, "first.jpg", "second.png")
	body := "<p>Hello</p>[IMAGE1]<p>bye</p>" // no [IMAGE2]

	draft, err := BuildDraft("me@example.com", "you@example.com", "Hi",
		body, []string{filepath.Join(dir, "first.jpg"), filepath.Join(dir, "second.png")}, nil)
	if err != nil {
		t.Fatalf("BuildDraft failed: %v", err)
	}

	if len(draft.Images) != 1 {
		t.Fatalf("got %d inline images, want 1", len(draft.Images))
	}
	if draft.Images[0].ContentID != "first.jpg" {
		t.Errorf("kept image %s, want first.jpg", draft.Images[0].ContentID)
	}
}

func TestBuildDraftRequiresRecipient(t *testing.T) {
	if _, err := BuildDraft("me@example.com", "", "Hi", "<p>body</p>", nil, nil); err == nil {
		t.Error("expected an error for an empty recipient")
	}
}

func TestBuildDraftSkipsMissingAttachments(t *testing.T) {
	dir := t.TempDir()
	brochure := filepath.Join(dir, "brochure.pdf")
	if err := os.WriteFile(brochure, []byte("pdf"), 0644); err != nil {
		t.Fatalf("failed to write brochure: %v", err)
	}

	draft, err := BuildDraft("me@example.com", "you@example.com", "Hi", "<p>body</p>",
		nil, []string{brochure, filepath.Join(dir, "missing.pdf")})
	if err != nil {
		t.Fatalf("BuildDraft failed: %v", err)
	}
	if len(draft.Attachments) != 1 || draft.Attachments[0] != brochure {
		t.Errorf("attachments = %v, want just the brochure", draft.Attachments)
	}
}

func TestEncodeDraft(t *testing.T) {
	dir := writeImages(t, "photo.jpg")
	brochure := filepath.Join(dir, "brochure.pdf")
	if err := os.WriteFile(brochure, []byte("pdf"), 0644); err != nil {
		t.Fatalf("failed to write brochure: %v", err)
	}

	draft, err := BuildDraft("me@example.com", "you@example.com", "Cooperation proposal",
		"<p>Hello</p>[IMAGE1]", []string{filepath.Join(dir, "photo.jpg")}, []string{brochure})
	if err != nil {
		t.Fatalf("BuildDraft failed: %v", err)
	}

	raw, err := EncodeDraft(draft)
	if err != nil {
		t.Fatalf("EncodeDraft failed: %v", err)
	}

	msg := string(raw)
	for _, want := range []string{
		"From: me@example.com",
		"To: you@example.com",
		"Subject: Cooperation proposal",
		"Content-Type: multipart/",
		"photo.jpg",
		"brochure.pdf",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("encoded message missing %q", want)
		}
	}
}

func TestEncodeDraftMissingImage(t *testing.T) {
	draft, err := BuildDraft("me@example.com", "you@example.com", "Hi",
		"<p>a</p>[IMAGE1]", []string{filepath.Join(t.TempDir(), "gone.jpg")}, nil)
	if err != nil {
		t.Fatalf("BuildDraft failed: %v", err)
	}
	if _, err := EncodeDraft(draft); err == nil {
		t.Error("expected an error for a missing inline image file")
	}
}

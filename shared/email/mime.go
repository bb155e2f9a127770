package email

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"outreach-stack/internal/models"

	"gopkg.in/gomail.v2"
)

// BuildDraft assembles the outgoing email. bodyHTML is expected to carry
// [IMAGE1]..[IMAGEn] placeholders; each placeholder that is present is
// rewritten to an <img> tag referencing the matching image's Content-ID.
// Images whose placeholder does not appear in the body are dropped, which
// keeps every embedded image referenced.
func BuildDraft(sender, recipient, subject, bodyHTML string, imagePaths, attachmentPaths []string) (*models.EmailDraft, error) {
	if recipient == "" {
		return nil, fmt.Errorf("recipient is required")
	}

	body := bodyHTML
	var images []models.InlineImage
	for i, path := range imagePaths {
		placeholder := fmt.Sprintf("[IMAGE%d]", i+1)
		if !strings.Contains(body, placeholder) {
			log.Printf("Placeholder %s not found in body, dropping image %s", placeholder, filepath.Base(path))
			continue
		}
		cid := filepath.Base(path)
		tag := fmt.Sprintf(`<img src="cid:%s" alt="%s" style="max-width: 100%%; height: auto; display: block;"><br>`, cid, cid)
		body = strings.ReplaceAll(body, placeholder, tag)
		images = append(images, models.InlineImage{Path: path, ContentID: cid})
	}

	var attachments []string
	for _, path := range attachmentPaths {
		if _, err := os.Stat(path); err != nil {
			log.Printf("Warning: attachment not found, skipping: %s", path)
			continue
		}
		attachments = append(attachments, path)
	}

	return &models.EmailDraft{
		Sender:      sender,
		Recipient:   recipient,
		Subject:     subject,
		BodyHTML:    body,
		Images:      images,
		Attachments: attachments,
	}, nil
}

// EncodeDraft renders the draft as a raw RFC 2822 message with inline images
// and attachments.
func EncodeDraft(draft *models.EmailDraft) ([]byte, error) {
	m := gomail.NewMessage()
	m.SetHeader("From", draft.Sender)
	m.SetHeader("To", draft.Recipient)
	m.SetHeader("Subject", draft.Subject)
	m.SetBody("text/html", draft.BodyHTML)

	for _, img := range draft.Images {
		if _, err := os.Stat(img.Path); err != nil {
			return nil, fmt.Errorf("inline image missing: %s: %w", img.Path, err)
		}
		m.Embed(img.Path, gomail.Rename(img.ContentID))
	}
	for _, path := range draft.Attachments {
		m.Attach(path)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode MIME message: %w", err)
	}
	return buf.Bytes(), nil
}

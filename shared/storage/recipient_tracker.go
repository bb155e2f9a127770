package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RecipientTracker keeps a persistent record of recipient emails a draft has
// already been created for, so re-running the batch does not draft the same
// company twice.
type RecipientTracker struct {
	filePath string
	drafted  map[string]time.Time
	mu       sync.RWMutex
}

// DraftedRecipient is one persisted tracker entry.
type DraftedRecipient struct {
	Email     string    `json:"email"`
	DraftedAt time.Time `json:"drafted_at"`
}

// NewRecipientTracker loads (or initializes) the tracker file under dataDir.
func NewRecipientTracker(dataDir string) (*RecipientTracker, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	tracker := &RecipientTracker{
		filePath: filepath.Join(dataDir, "drafted_recipients.json"),
		drafted:  make(map[string]time.Time),
	}
	if err := tracker.load(); err != nil {
		return nil, fmt.Errorf("failed to load recipient tracker data: %w", err)
	}
	return tracker, nil
}

// IsDrafted reports whether a draft was already created for the email in a
// previous run. Comparison is case-insensitive.
func (rt *RecipientTracker) IsDrafted(email string) bool {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	_, ok := rt.drafted[normalizeEmail(email)]
	return ok
}

// MarkDrafted records the email and persists the tracker.
func (rt *RecipientTracker) MarkDrafted(email string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.drafted[normalizeEmail(email)] = time.Now()
	return rt.save()
}

// Count returns the number of tracked recipients.
func (rt *RecipientTracker) Count() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.drafted)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (rt *RecipientTracker) load() error {
	f, err := os.Open(rt.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open tracker file: %w", err)
	}
	defer f.Close()

	var entries []DraftedRecipient
	if err := json.NewDecoder(f).Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode tracker data: %w", err)
	}
	for _, e := range entries {
		rt.drafted[normalizeEmail(e.Email)] = e.DraftedAt
	}
	return nil
}

func (rt *RecipientTracker) save() error {
	entries := make([]DraftedRecipient, 0, len(rt.drafted))
	for email, at := range rt.drafted {
		entries = append(entries, DraftedRecipient{Email: email, DraftedAt: at})
	}

	f, err := os.Create(rt.filePath)
	if err != nil {
		return fmt.Errorf("failed to create tracker file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

package letterwriter

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"outreach-stack/internal/models"
	"outreach-stack/shared/ai"
	"outreach-stack/shared/config"
	"outreach-stack/shared/email"
	"outreach-stack/shared/scheduler"
	"outreach-stack/shared/scrape"
	"outreach-stack/shared/storage"

	"golang.org/x/time/rate"
)

// ContentFetcher retrieves trimmed website text for a company URL.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (*models.ScrapedContent, error)
}

// InsightExtractor derives a business summary and cooperation points from
// scraped content and the sender's business description.
type InsightExtractor interface {
	ExtractInsight(ctx context.Context, scraped *models.ScrapedContent, businessDesc string) (*models.Insight, error)
}

// LetterComposer generates the email subject and HTML body for a company.
type LetterComposer interface {
	ComposeLetter(ctx context.Context, record *models.CompanyRecord, insight *models.Insight, maxImages int) (*ai.Letter, error)
}

// DraftPublisher saves an assembled email as a draft and returns its ID.
type DraftPublisher interface {
	CreateDraft(ctx context.Context, draft *models.EmailDraft) (string, error)
}

// RecipientTracker remembers recipients drafted in previous runs.
type RecipientTracker interface {
	IsDrafted(email string) bool
	MarkDrafted(email string) error
}

// LetterMetrics summarizes one batch run.
type LetterMetrics struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// GetSummary implements the scheduler.Metrics interface.
func (m LetterMetrics) GetSummary() string {
	return fmt.Sprintf("processed %d companies, %d drafts created, %d skipped, %d failed",
		m.Total, m.Succeeded, m.Skipped, m.Failed)
}

// LetterWriterAgent drives every company record through fetch, insight
// extraction, letter composition, and draft publishing. One company's failure
// never aborts the batch.
type LetterWriterAgent struct {
	config       *config.Config
	fetcher      ContentFetcher
	extractor    InsightExtractor
	composer     LetterComposer
	publisher    DraftPublisher
	tracker      RecipientTracker
	limiter      *rate.Limiter
	businessDesc string
}

func NewLetterWriterAgent(cfg *config.Config) *LetterWriterAgent {
	return &LetterWriterAgent{config: cfg}
}

func (a *LetterWriterAgent) Name() string {
	return "Letter Writer"
}

// Initialize loads the static reference material and wires the external
// clients. The Gmail token is acquired here, before any record is processed.
func (a *LetterWriterAgent) Initialize(ctx context.Context) error {
	log.Printf("Initializing %s...", a.Name())

	if a.businessDesc == "" {
		data, err := os.ReadFile(a.config.Paths.BusinessDoc)
		if err != nil {
			return fmt.Errorf("failed to read business description %s: %w", a.config.Paths.BusinessDoc, err)
		}
		a.businessDesc = strings.TrimSpace(string(data))
		if a.businessDesc == "" {
			return fmt.Errorf("business description %s is empty", a.config.Paths.BusinessDoc)
		}
		log.Printf("Loaded business description (%d chars)", len(a.businessDesc))
	}

	if a.config.Paths.Brochure != "" {
		if _, err := os.Stat(a.config.Paths.Brochure); err != nil {
			log.Printf("Warning: brochure not found at %s, drafts will go out without it", a.config.Paths.Brochure)
		}
	}

	if a.fetcher == nil {
		a.fetcher = scrape.NewFetcher(&a.config.Scraper)
		log.Println("Website fetcher initialized")
	}

	if a.extractor == nil || a.composer == nil {
		analyzer, err := ai.NewAnalyzer(ctx, a.config)
		if err != nil {
			return fmt.Errorf("failed to create AI analyzer: %w", err)
		}
		a.extractor = analyzer
		a.composer = analyzer
		log.Println("AI analyzer initialized")
	}

	if a.publisher == nil {
		publisher, err := email.NewPublisher(ctx, &a.config.Gmail)
		if err != nil {
			return fmt.Errorf("failed to create Gmail publisher: %w", err)
		}
		a.publisher = publisher
		log.Println("Gmail publisher initialized")
	}

	if a.tracker == nil {
		tracker, err := storage.NewRecipientTracker(a.config.Paths.DataDir)
		if err != nil {
			return fmt.Errorf("failed to create recipient tracker: %w", err)
		}
		a.tracker = tracker
		log.Printf("Recipient tracker initialized (%d recipients tracked)", tracker.Count())
	}

	if a.limiter == nil {
		a.limiter = rate.NewLimiter(rate.Limit(float64(a.config.AI.RequestsPerMinute)/60.0), 1)
	}

	return nil
}

// RunOnce processes the whole input spreadsheet and writes one result row per
// input record, in input order.
func (a *LetterWriterAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	records, err := storage.LoadCompanies(a.config.Paths.CompaniesCSV)
	if err != nil {
		return fmt.Errorf("failed to load companies: %w", err)
	}
	if len(records) == 0 {
		log.Println("No companies found in input spreadsheet")
		if events != nil && events.OnSuccess != nil {
			events.OnSuccess(LetterMetrics{}, time.Since(startTime))
		}
		return nil
	}

	log.Printf("Loaded %d company records", len(records))

	results := a.ProcessAll(ctx, records, events)

	if err := storage.WriteResults(a.config.Paths.ResultsCSV, results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	metrics := LetterMetrics{Total: len(results)}
	for _, res := range results {
		switch res.Status {
		case models.StatusSuccess:
			metrics.Succeeded++
		case models.StatusSkipped:
			metrics.Skipped++
		case models.StatusFailed:
			metrics.Failed++
		}
	}

	log.Printf("Run complete: %s", metrics.GetSummary())
	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}
	return nil
}

// ProcessAll runs every record through the pipeline sequentially and returns
// exactly one result per record, preserving input order.
func (a *LetterWriterAgent) ProcessAll(ctx context.Context, records []models.CompanyRecord, events *scheduler.AgentEvents) []models.ProcessingResult {
	results := make([]models.ProcessingResult, 0, len(records))
	for i := range records {
		record := &records[i]
		log.Printf("--- Processing company %d/%d: %s ---", i+1, len(records), record.CompanyName)

		start := time.Now()
		res := a.processRecord(ctx, record)
		res.Finished = time.Now()

		if res.Status == models.StatusFailed {
			log.Printf("Company %s failed: %s", record.CompanyName, res.Reason)
			if events != nil && events.OnPartialFailure != nil {
				events.OnPartialFailure(fmt.Errorf("%s: %s", record.CompanyName, res.Reason), time.Since(start))
			}
		} else {
			log.Printf("Company %s finished with status %s", record.CompanyName, res.Status)
		}
		results = append(results, res)
	}
	return results
}

func (a *LetterWriterAgent) processRecord(ctx context.Context, record *models.CompanyRecord) models.ProcessingResult {
	res := models.ProcessingResult{Record: *record}

	if !record.ShouldProcess() {
		res.Status = models.StatusSkipped
		res.Reason = "process flag not set"
		return res
	}

	if a.tracker != nil && a.tracker.IsDrafted(record.RecipientEmail) {
		res.Status = models.StatusSkipped
		res.Reason = "already processed"
		return res
	}

	if err := validateRecord(record); err != nil {
		res.Status = models.StatusFailed
		res.Reason = fmt.Sprintf("invalid record: %v", err)
		return res
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			res.Status = models.StatusFailed
			res.Reason = fmt.Sprintf("processing interrupted: %v", err)
			return res
		}
	}

	scraped, err := a.fetcher.Fetch(ctx, record.Website)
	if err != nil {
		res.Status = models.StatusFailed
		res.Reason = fmt.Sprintf("fetch failed: %v", err)
		return res
	}

	insight, err := a.extractor.ExtractInsight(ctx, scraped, a.businessDesc)
	if err != nil {
		res.Status = models.StatusFailed
		res.Reason = fmt.Sprintf("insight extraction failed: %v", err)
		return res
	}
	res.Insight = insight

	letter, err := a.composer.ComposeLetter(ctx, record, insight, a.config.Email.MaxImagesPerEmail)
	if err != nil {
		res.Status = models.StatusFailed
		res.Reason = fmt.Sprintf("composition failed: %v", err)
		return res
	}

	subject := letter.Subject
	if subject == "" {
		subject = fmt.Sprintf("Potential Cooperation with %s", record.CompanyName)
	}

	images, err := email.SelectImages(a.config.Paths.ImagesDir, letter.BodyHTML, record.CompanyName, a.config.Email.MaxImagesPerEmail)
	if err != nil {
		res.Status = models.StatusFailed
		res.Reason = fmt.Sprintf("composition failed: %v", err)
		return res
	}
	if len(images) == 0 {
		log.Printf("No candidate images available for %s, proceeding without inline images", record.CompanyName)
	}

	var attachments []string
	if a.config.Paths.Brochure != "" {
		attachments = append(attachments, a.config.Paths.Brochure)
	}

	draft, err := email.BuildDraft(a.config.Email.SenderEmail, record.RecipientEmail, subject, letter.BodyHTML, images, attachments)
	if err != nil {
		res.Status = models.StatusFailed
		res.Reason = fmt.Sprintf("composition failed: %v", err)
		return res
	}
	res.Draft = draft

	draftID, err := a.publisher.CreateDraft(ctx, draft)
	if err != nil {
		res.Status = models.StatusFailed
		res.Reason = fmt.Sprintf("publish failed: %v", err)
		return res
	}

	if a.tracker != nil {
		if err := a.tracker.MarkDrafted(record.RecipientEmail); err != nil {
			log.Printf("Warning: failed to record drafted recipient %s: %v", record.RecipientEmail, err)
		}
	}

	res.Status = models.StatusSuccess
	res.DraftID = draftID
	return res
}

func validateRecord(record *models.CompanyRecord) error {
	if record.CompanyName == "" {
		return fmt.Errorf("missing company name")
	}
	if record.Website == "" {
		return fmt.Errorf("missing website")
	}
	email := record.RecipientEmail
	if email == "" {
		return fmt.Errorf("missing recipient email")
	}
	at := strings.Index(email, "@")
	if at <= 0 || !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("invalid recipient email %q", email)
	}
	return nil
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"outreach-stack/internal/models"
	"outreach-stack/shared/config"

	"google.golang.org/genai"
)

// ExtractionError reports a failed insight extraction: API error, timeout, or
// a response that cannot be parsed into the expected structure.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return fmt.Sprintf("insight extraction: %v", e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }

// CompositionError reports a failed letter generation: API error, timeout, or
// a response missing the subject/body structure.
type CompositionError struct {
	Err error
}

func (e *CompositionError) Error() string { return fmt.Sprintf("letter composition: %v", e.Err) }
func (e *CompositionError) Unwrap() error { return e.Err }

// Analyzer wraps the Gemini client for insight extraction and letter
// generation.
type Analyzer struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	sender  config.EmailConfig
}

func NewAnalyzer(ctx context.Context, cfg *config.Config) (*Analyzer, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.AI.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.AI.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.AI.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Analyzer{
		client:  client,
		model:   cfg.AI.Model,
		timeout: time.Duration(cfg.AI.RequestTimeoutSeconds) * time.Second,
		sender:  cfg.Email,
	}, nil
}

var insightSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"main_business":      {Type: genai.TypeString},
		"cooperation_points": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"main_business", "cooperation_points"},
}

// ExtractInsight asks the model to summarize the target company's business
// and identify cooperation points against the sender's business description.
func (a *Analyzer) ExtractInsight(ctx context.Context, scraped *models.ScrapedContent, businessDesc string) (*models.Insight, error) {
	if scraped == nil || strings.TrimSpace(scraped.Text) == "" {
		return nil, &ExtractionError{Err: fmt.Errorf("no website content to analyze")}
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := buildInsightPrompt(scraped.Text, businessDesc)
	resp, err := a.client.Models.GenerateContent(reqCtx, a.model, genai.Text(prompt), &genai.GenerateContentConfig{
		CandidateCount:   1,
		ResponseMIMEType: "application/json",
		ResponseSchema:   insightSchema,
	})
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}

	insight, err := parseInsightResponse(resp.Text())
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}
	log.Printf("Extracted insight: %d cooperation points", len(insight.CooperationPoints))
	return insight, nil
}

func buildInsightPrompt(websiteText, businessDesc string) string {
	return fmt.Sprintf(`You are a B2B business analyst.

OUR BUSINESS:
---
%s
---

TARGET COMPANY WEBSITE TEXT:
---
%s
---

INSTRUCTIONS:
1. Summarize the target company's primary activity, products, or services in 1-2 sentences. Ignore boilerplate such as cookie notices, navigation menus, and footers.
2. Identify concrete potential cooperation points between our business and the target company, ordered from strongest to weakest. Give an empty list if there is no plausible overlap.

Respond with a JSON object containing "main_business" (string) and "cooperation_points" (array of strings).`,
		businessDesc, websiteText)
}

func parseInsightResponse(text string) (*models.Insight, error) {
	var parsed struct {
		MainBusiness      string   `json:"main_business"`
		CooperationPoints []string `json:"cooperation_points"`
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal insight JSON %q: %w", text, err)
	}
	if strings.TrimSpace(parsed.MainBusiness) == "" {
		return nil, fmt.Errorf("insight response missing main_business")
	}

	points := make([]string, 0, len(parsed.CooperationPoints))
	for _, p := range parsed.CooperationPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}

	return &models.Insight{
		MainBusiness:      strings.TrimSpace(parsed.MainBusiness),
		CooperationPoints: points,
	}, nil
}

var letterSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"subject":   {Type: genai.TypeString},
		"body_html": {Type: genai.TypeString},
	},
	Required: []string{"subject", "body_html"},
}

// Letter is the raw LLM-generated email copy before MIME assembly. BodyHTML
// contains [IMAGE1]..[IMAGEn] placeholders where inline images belong.
type Letter struct {
	Subject  string
	BodyHTML string
}

// ComposeLetter asks the model for a subject line and HTML body addressed to
// the target company, weaving in the extracted cooperation points.
func (a *Analyzer) ComposeLetter(ctx context.Context, record *models.CompanyRecord, insight *models.Insight, maxImages int) (*Letter, error) {
	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := a.buildLetterPrompt(record, insight, maxImages)
	resp, err := a.client.Models.GenerateContent(reqCtx, a.model, genai.Text(prompt), &genai.GenerateContentConfig{
		CandidateCount:   1,
		ResponseMIMEType: "application/json",
		ResponseSchema:   letterSchema,
	})
	if err != nil {
		return nil, &CompositionError{Err: err}
	}

	letter, err := parseLetterResponse(resp.Text())
	if err != nil {
		return nil, &CompositionError{Err: err}
	}
	log.Printf("Composed letter for %s: %q", record.CompanyName, letter.Subject)
	return letter, nil
}

func (a *Analyzer) buildLetterPrompt(record *models.CompanyRecord, insight *models.Insight, maxImages int) string {
	points := "- (none identified; keep the letter a general introduction)"
	if len(insight.CooperationPoints) > 0 {
		points = "- " + strings.Join(insight.CooperationPoints, "\n- ")
	}

	placeholders := make([]string, 0, maxImages)
	for i := 1; i <= maxImages; i++ {
		placeholders = append(placeholders, fmt.Sprintf("[IMAGE%d]", i))
	}

	return fmt.Sprintf(`Write a business development email from %s (%s at %s) to %s at %s.

TARGET COMPANY BUSINESS:
%s

POTENTIAL COOPERATION POINTS:
%s

INSTRUCTIONS:
1. Subject: concise and compelling, mentioning both companies and hinting at cooperation.
2. Body: 3-4 short paragraphs of clean HTML (use <p> tags, no CSS). Introduce %s, elaborate on the cooperation points and mutual benefits, and close with a call to action suggesting a brief meeting.
3. Mention that our product brochure is attached for reference.
4. Insert the literal placeholders %s between paragraphs where product images should appear. Do not write <img> tags yourself.
5. Sign off with the sender's name and role.

Respond with a JSON object containing "subject" (string) and "body_html" (string).`,
		a.sender.SenderName, a.sender.SenderRole, a.sender.CompanyName,
		record.ContactOrCompany(), record.CompanyName,
		insight.MainBusiness,
		points,
		a.sender.CompanyName,
		strings.Join(placeholders, ", "))
}

func parseLetterResponse(text string) (*Letter, error) {
	var parsed struct {
		Subject  string `json:"subject"`
		BodyHTML string `json:"body_html"`
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal letter JSON %q: %w", text, err)
	}
	if strings.TrimSpace(parsed.BodyHTML) == "" {
		return nil, fmt.Errorf("letter response missing body_html")
	}
	return &Letter{
		Subject:  strings.TrimSpace(parsed.Subject),
		BodyHTML: strings.TrimSpace(parsed.BodyHTML),
	}, nil
}

// extractJSON trims any prose the model wraps around the JSON object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}
	return text[start : end+1]
}

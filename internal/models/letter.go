package models

// Insight is the LLM-derived business analysis for one company.
type Insight struct {
	MainBusiness      string   `json:"main_business"`
	CooperationPoints []string `json:"cooperation_points"`
}

// InlineImage is one image embedded in the email body by Content-ID.
type InlineImage struct {
	Path      string `json:"path"`
	ContentID string `json:"content_id"`
}

// EmailDraft is the assembled outgoing artifact, consumed exactly once by the
// draft publisher. Every inline image's Content-ID is referenced from BodyHTML.
type EmailDraft struct {
	Sender      string        `json:"sender"`
	Recipient   string        `json:"recipient"`
	Subject     string        `json:"subject"`
	BodyHTML    string        `json:"body_html"`
	Images      []InlineImage `json:"images"`
	Attachments []string      `json:"attachments"`
}

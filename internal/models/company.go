package models

import "strings"

// CompanyRecord is one row of the input companies spreadsheet.
type CompanyRecord struct {
	CompanyName    string `json:"company_name"`
	Website        string `json:"website"`
	RecipientEmail string `json:"recipient_email"`
	ContactPerson  string `json:"contact_person"`
	ProcessFlag    string `json:"process_flag"` // raw value of the "process" column
}

// ShouldProcess reports whether the record is selected for this run.
func (c *CompanyRecord) ShouldProcess() bool {
	return strings.EqualFold(strings.TrimSpace(c.ProcessFlag), "yes")
}

// ContactOrCompany returns the contact person, falling back to the company
// name when the contact field is empty.
func (c *CompanyRecord) ContactOrCompany() string {
	if contact := strings.TrimSpace(c.ContactPerson); contact != "" {
		return contact
	}
	return c.CompanyName
}

// ScrapedContent is the trimmed website text for one company. It is consumed
// by the insight extraction step and not persisted.
type ScrapedContent struct {
	SourceURL string `json:"source_url"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
}

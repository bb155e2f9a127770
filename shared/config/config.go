package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	AI         AIConfig         `yaml:"ai"`
	Gmail      GmailConfig      `yaml:"gmail"`
	Email      EmailConfig      `yaml:"email"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
	LogLevel   string           `yaml:"log_level"`
}

type PathsConfig struct {
	CompaniesCSV string `yaml:"companies_csv"`
	ResultsCSV   string `yaml:"results_csv"`
	BusinessDoc  string `yaml:"business_doc"`
	Brochure     string `yaml:"brochure"`
	ImagesDir    string `yaml:"images_dir"`
	LogDir       string `yaml:"log_dir"`
	DataDir      string `yaml:"data_dir"`
}

type AIConfig struct {
	GeminiAPIKey          string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model                 string `yaml:"model"`
	BaseURL               string `yaml:"base_url"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	RequestsPerMinute     int    `yaml:"requests_per_minute"`
}

type GmailConfig struct {
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile    string `yaml:"token_file"`
}

type EmailConfig struct {
	SenderEmail       string `yaml:"sender_email" env:"SENDER_EMAIL"`
	SenderName        string `yaml:"sender_name"`
	SenderRole        string `yaml:"sender_role"`
	CompanyName       string `yaml:"company_name"`
	MaxImagesPerEmail int    `yaml:"max_images_per_email"`
}

type ScraperConfig struct {
	TimeoutSeconds   int `yaml:"timeout_seconds"`
	MaxContentLength int `yaml:"max_content_length"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
	}

	if cfg.AI.GeminiAPIKey == "" {
		cfg.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Gmail.ClientID == "" {
		cfg.Gmail.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if cfg.Gmail.ClientSecret == "" {
		cfg.Gmail.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if cfg.Email.SenderEmail == "" {
		cfg.Email.SenderEmail = os.Getenv("SENDER_EMAIL")
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Paths.ResultsCSV == "" {
		c.Paths.ResultsCSV = "data/processed_companies.csv"
	}
	if c.Paths.LogDir == "" {
		c.Paths.LogDir = "logs"
	}
	if c.Paths.DataDir == "" {
		c.Paths.DataDir = "data"
	}
	if c.Gmail.TokenFile == "" {
		c.Gmail.TokenFile = "gmail_token.json"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.RequestTimeoutSeconds <= 0 {
		c.AI.RequestTimeoutSeconds = 45
	}
	if c.AI.RequestsPerMinute <= 0 {
		c.AI.RequestsPerMinute = 20
	}
	if c.Email.MaxImagesPerEmail <= 0 {
		c.Email.MaxImagesPerEmail = 3
	}
	if c.Email.SenderRole == "" {
		c.Email.SenderRole = "Overseas Sales Manager"
	}
	if c.Scraper.TimeoutSeconds <= 0 {
		c.Scraper.TimeoutSeconds = 20
	}
	if c.Scraper.MaxContentLength <= 0 {
		c.Scraper.MaxContentLength = 3000
	}
	if c.Monitoring.HealthPort <= 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Schedule == "" {
		c.Schedule = "0 0 8 * * 1" // Weekly, Monday at 8 AM
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
}

func (c *Config) validate() error {
	if c.Paths.CompaniesCSV == "" {
		return fmt.Errorf("companies spreadsheet path is required (paths.companies_csv)")
	}
	if c.Paths.BusinessDoc == "" {
		return fmt.Errorf("business description document path is required (paths.business_doc)")
	}
	if c.Paths.ImagesDir == "" {
		return fmt.Errorf("image pool directory is required (paths.images_dir)")
	}
	if c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
	}
	if c.Gmail.ClientID == "" {
		return fmt.Errorf("Google client ID is required (set GOOGLE_CLIENT_ID or gmail.client_id)")
	}
	if c.Gmail.ClientSecret == "" {
		return fmt.Errorf("Google client secret is required (set GOOGLE_CLIENT_SECRET or gmail.client_secret)")
	}
	if c.Email.SenderEmail == "" {
		return fmt.Errorf("Sender email is required (set SENDER_EMAIL or email.sender_email)")
	}
	if c.Email.SenderName == "" {
		return fmt.Errorf("Sender name is required (email.sender_name)")
	}
	if c.Email.CompanyName == "" {
		return fmt.Errorf("Sending company name is required (email.company_name)")
	}
	return nil
}

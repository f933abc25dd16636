package config

import (
	"log"
	"os"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port                  string
	CORSAllowOrigin       []string
	Env                   string
	DatabaseURL           string
	RedisURL              string
	JiraBaseURL           string
	JiraUsername          string
	JiraAPIToken          string
	WebhookSecret         string
	GoogleCredentialsFile string
	TemplateSheetID       string
	DestinationFolderID   string
	DefaultPlatform       string
	QueueURL              string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	jiraToken := os.Getenv("QA_JIRA_API_TOKEN")

	if env == "production" && jiraToken == "" {
		log.Printf("QA_JIRA_API_TOKEN is required in production")
	}

	return Config{
		Port:                  getEnv("PORT", "8080"),
		CORSAllowOrigin:       splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:                   env,
		DatabaseURL:           dbURL,
		RedisURL:              getEnv("QA_REDIS_URL", ""),
		JiraBaseURL:           strings.TrimRight(getEnv("QA_JIRA_URL", "https://example.atlassian.net"), "/"),
		JiraUsername:          getEnv("QA_JIRA_USERNAME", ""),
		JiraAPIToken:          jiraToken,
		WebhookSecret:         getEnv("QA_WEBHOOK_SECRET", ""),
		GoogleCredentialsFile: getEnv("QA_GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		TemplateSheetID:       getEnv("QA_TEMPLATE_SHEET_ID", ""),
		DestinationFolderID:   getEnv("QA_DESTINATION_FOLDER_ID", ""),
		DefaultPlatform:       getEnv("QA_DEFAULT_PLATFORM", "Convert"),
		QueueURL:              getEnv("QA_SQS_QUEUE_URL", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Lead store backends selectable via LEAD_STORE.
const (
	StoreAirtable = "airtable"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
)

type Config struct {
	HTTPPort  string
	LogLevel  string
	LogFormat string

	// Hosted assistant
	GeminiAPIKey   string
	AssistantModel string
	CallTimeout    time.Duration

	// Airtable
	AirtableAPIKey    string
	AirtableBaseID    string
	AirtableTableName string

	// Scoring workflow
	ScoringAPIURL       string
	ScoringAPIKey       string
	ScoringAgentsConfig string
	ScoringTasksConfig  string
	SerperAPIKey        string

	// Business context handed to the scoring workflow on every run
	CompanyName        string
	ProductName        string
	ProductDescription string
	ICPDescription     string

	// Persistence
	LeadStore   string
	LeadLogPath string
	DatabaseURL string

	// Lead event publication
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Prompt templates
	ExtractionPrompt string
	SystemPrompt     string
}

// Load reads the .env file (if present) and the process environment and
// returns a validated Config. The returned value is treated as immutable for
// the process lifetime and passed into every component constructor.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional, environment wins

	cfg := &Config{
		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		AssistantModel: getEnv("ASSISTANT_MODEL", "gemini-1.5-flash-latest"),
		CallTimeout:    time.Duration(getEnvAsInt("CALL_TIMEOUT_SECONDS", 60)) * time.Second,

		AirtableAPIKey:    getEnv("AIRTABLE_API_KEY", ""),
		AirtableBaseID:    getEnv("AIRTABLE_BASE_ID", ""),
		AirtableTableName: getEnv("AIRTABLE_TABLE_NAME", ""),

		ScoringAPIURL:       getEnv("SCORING_API_URL", ""),
		ScoringAPIKey:       getEnv("SCORING_API_KEY", ""),
		ScoringAgentsConfig: getEnv("SCORING_AGENTS_CONFIG", "config/agents.yaml"),
		ScoringTasksConfig:  getEnv("SCORING_TASKS_CONFIG", "config/tasks.yaml"),
		SerperAPIKey:        getEnv("SERPER_API_KEY", ""),

		CompanyName:        getEnv("COMPANY_NAME", ""),
		ProductName:        getEnv("PRODUCT_NAME", ""),
		ProductDescription: getEnv("PRODUCT_DESCRIPTION", ""),
		ICPDescription:     getEnv("ICP_DESCRIPTION", ""),

		LeadStore:   getEnv("LEAD_STORE", StoreFile),
		LeadLogPath: getEnv("LEAD_LOG_PATH", "data/logs/leads.json"),
		DatabaseURL: getEnv("DATABASE_URL", "leads.db"),

		KafkaEnabled: getEnvAsBool("KAFKA_ENABLED", false),
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "leads.finalized"),

		ExtractionPrompt: getEnv("EXTRACTION_PROMPT", DefaultExtractionPrompt),
		SystemPrompt:     getEnv("SYSTEM_PROMPT", DefaultSystemPrompt),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if cfg.ScoringAPIURL == "" {
		return nil, fmt.Errorf("SCORING_API_URL environment variable is required")
	}
	switch cfg.LeadStore {
	case StoreAirtable:
		if cfg.AirtableAPIKey == "" || cfg.AirtableBaseID == "" || cfg.AirtableTableName == "" {
			return nil, fmt.Errorf("AIRTABLE_API_KEY, AIRTABLE_BASE_ID and AIRTABLE_TABLE_NAME are required when LEAD_STORE=airtable")
		}
	case StoreFile, StoreSQLite:
	default:
		return nil, fmt.Errorf("unknown LEAD_STORE %q (want airtable, file or sqlite)", cfg.LeadStore)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package infrastructure

import "os"

// AppConfig contains application configuration beyond the database
type AppConfig struct {
	Port string

	// PermissiveStatusFlow restores the historical any-to-any status updates
	// for deployments that still rely on them. The default enforces the
	// lifecycle transition table.
	PermissiveStatusFlow bool

	// AllowUnlinkedRestock permits a manual restock on an order that never
	// deducted inventory. Off by default because it inflates stock.
	AllowUnlinkedRestock bool

	// Courier gateway (Steadfast-compatible portal API).
	CourierBaseURL   string
	CourierAPIKey    string
	CourierSecretKey string

	// Address classifier endpoint.
	ClassifierURL    string
	ClassifierAPIKey string
}

// LoadAppConfig reads application configuration from the environment
func LoadAppConfig() *AppConfig {
	return &AppConfig{
		Port:                 getEnv("PORT", "5000"),
		PermissiveStatusFlow: getEnv("STATUS_FLOW_PERMISSIVE", "false") == "true",
		AllowUnlinkedRestock: getEnv("ALLOW_UNLINKED_RESTOCK", "false") == "true",
		CourierBaseURL:       getEnv("STEADFAST_BASE_URL", "https://portal.packzy.com/api/v1"),
		CourierAPIKey:        os.Getenv("STEADFAST_API_KEY"),
		CourierSecretKey:     os.Getenv("STEADFAST_SECRET_KEY"),
		ClassifierURL:        os.Getenv("CLASSIFIER_URL"),
		ClassifierAPIKey:     os.Getenv("CLASSIFIER_API_KEY"),
	}
}

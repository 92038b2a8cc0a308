package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./memberimport.db"

	// DefaultRecordsPath is the default path for custom record category definitions
	DefaultRecordsPath = "./records.yaml"
)

package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./lectern.db"
)

package constants

// Table names
const (
	TABLE_CALL_RECORDS        = "call_records"
	TABLE_INTERACTIONS        = "interactions"
	TABLE_KNOWLEDGE_SNAPSHOTS = "knowledge_snapshots"
)

// Environment names
const (
	ENV_DEVELOPMENT = "development"
	ENV_TEST        = "test"
	ENV_PRODUCTION  = "production"
)

// Database drivers
const (
	DB_DRIVER_SQLITE   = "sqlite"
	DB_DRIVER_MYSQL    = "mysql"
	DB_DRIVER_POSTGRES = "postgres"
)

// Knowledge cache backends
const (
	KNOWLEDGE_CACHE_FILE     = "file"
	KNOWLEDGE_CACHE_DATABASE = "database"
)

const DEMO_KNOWLEDGE_SOURCE = "seed://demo"

package sqlite

// Schema DDL. All statements are idempotent: the database file is durable
// state shared across pipeline runs (the ingestion ledger must survive),
// so Attach never recreates it from scratch.
const (
	createStaging = `CREATE TABLE IF NOT EXISTS fare_staging (
    row_id INTEGER PRIMARY KEY AUTOINCREMENT,
    airline TEXT,
    source TEXT,
    source_name TEXT,
    destination TEXT,
    destination_name TEXT,
    departure_datetime TEXT,
    arrival_datetime TEXT,
    duration_hrs REAL,
    stopovers TEXT,
    aircraft_type TEXT,
    class TEXT,
    booking_source TEXT,
    base_fare_bdt REAL,
    tax_surcharge_bdt REAL,
    total_fare_bdt REAL,
    seasonality TEXT,
    days_before_departure INTEGER,
    source_file TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    ingestion_run_id TEXT NOT NULL,
    ingested_at TEXT NOT NULL,
    is_validated INTEGER NOT NULL DEFAULT 0,
    validation_errors TEXT,
    validated_at TEXT
);`

	createLedger = `CREATE TABLE IF NOT EXISTS ingestion_ledger (
    entry_id TEXT PRIMARY KEY,
    source_name TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    row_count INTEGER NOT NULL,
    run_id TEXT NOT NULL,
    ingested_at TEXT NOT NULL
);`

	createAnalytics = `CREATE TABLE IF NOT EXISTS fare_analytics (
    row_id INTEGER PRIMARY KEY AUTOINCREMENT,
    airline TEXT,
    source TEXT,
    source_name TEXT,
    destination TEXT,
    destination_name TEXT,
    departure_datetime TEXT,
    arrival_datetime TEXT,
    duration_hrs REAL,
    stopovers TEXT,
    aircraft_type TEXT,
    class TEXT,
    booking_source TEXT,
    base_fare_bdt REAL,
    tax_surcharge_bdt REAL,
    total_fare_bdt REAL,
    seasonality TEXT,
    days_before_departure INTEGER,
    is_peak_season INTEGER,
    route TEXT
);`
)

// Index DDL for the lookups the pipeline performs.
const (
	idxLedgerSource   = `CREATE INDEX IF NOT EXISTS idx_ledger_source ON ingestion_ledger(source_name);`
	idxLedgerHash     = `CREATE INDEX IF NOT EXISTS idx_ledger_hash ON ingestion_ledger(content_hash);`
	idxStagingSource  = `CREATE INDEX IF NOT EXISTS idx_staging_source ON fare_staging(source_file);`
	idxStagingValid   = `CREATE INDEX IF NOT EXISTS idx_staging_validated ON fare_staging(is_validated);`
	idxAnalyticsRoute = `CREATE INDEX IF NOT EXISTS idx_analytics_route ON fare_analytics(route);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createStaging,
	createLedger,
	createAnalytics,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxLedgerSource,
	idxLedgerHash,
	idxStagingSource,
	idxStagingValid,
	idxAnalyticsRoute,
}

package store

// Schema v1 - Catalog tables. These mirror the source music-store
// snapshot; the pipeline and reports treat them as read-only, the
// loader fills them from CSV exports.
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS artists (
  artist_id INTEGER PRIMARY KEY,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS albums (
  album_id INTEGER PRIMARY KEY,
  title TEXT NOT NULL,
  artist_id INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_albums_artist ON albums(artist_id);

CREATE TABLE IF NOT EXISTS genres (
  genre_id INTEGER PRIMARY KEY,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tracks (
  track_id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  album_id INTEGER,
  genre_id INTEGER,
  composer TEXT,
  milliseconds INTEGER NOT NULL,
  unit_price REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tracks_album ON tracks(album_id);
CREATE INDEX IF NOT EXISTS idx_tracks_genre ON tracks(genre_id);
CREATE INDEX IF NOT EXISTS idx_tracks_composer ON tracks(composer);

CREATE TABLE IF NOT EXISTS employees (
  employee_id INTEGER PRIMARY KEY,
  last_name TEXT NOT NULL,
  first_name TEXT NOT NULL,
  title TEXT
);

CREATE TABLE IF NOT EXISTS customers (
  customer_id INTEGER PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  country TEXT,
  support_rep_id INTEGER
);

CREATE INDEX IF NOT EXISTS idx_customers_rep ON customers(support_rep_id);

CREATE TABLE IF NOT EXISTS invoices (
  invoice_id INTEGER PRIMARY KEY,
  customer_id INTEGER NOT NULL,
  invoice_date DATETIME NOT NULL,
  total REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invoices_customer ON invoices(customer_id);
CREATE INDEX IF NOT EXISTS idx_invoices_date ON invoices(invoice_date);

CREATE TABLE IF NOT EXISTS invoice_lines (
  invoice_line_id INTEGER PRIMARY KEY,
  invoice_id INTEGER NOT NULL,
  track_id INTEGER,
  unit_price REAL,
  quantity INTEGER
);

CREATE INDEX IF NOT EXISTS idx_invoice_lines_invoice ON invoice_lines(invoice_id);
CREATE INDEX IF NOT EXISTS idx_invoice_lines_track ON invoice_lines(track_id);
`

// Schema v2 - Pipeline-owned tables. staging_track_cleaned is replaced
// wholesale on each enrichment run; pipeline_runs is the run log.
const schemaV2 = `
CREATE TABLE IF NOT EXISTS staging_track_cleaned (
  track_id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  final_composer TEXT,
  album_id INTEGER,
  genre_id INTEGER,
  milliseconds INTEGER NOT NULL,
  unit_price REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_staging_composer ON staging_track_cleaned(final_composer);

CREATE TABLE IF NOT EXISTS pipeline_runs (
  run_id TEXT PRIMARY KEY,
  started_at DATETIME NOT NULL,
  completed_at DATETIME,
  sink_mode TEXT NOT NULL,
  tracks_seen INTEGER DEFAULT 0,
  already_attributed INTEGER DEFAULT 0,
  filled INTEGER DEFAULT 0,
  unresolved INTEGER DEFAULT 0,
  error TEXT
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started ON pipeline_runs(started_at);
`

package sqlite

// Schema for the catalog database. Timestamps are stored as ISO-8601 TEXT,
// matching the payload wire format; deleted_at is NULL for live rows.
// Syncable tables carry no foreign keys between each other: merged data
// arrives in arbitrary order and dangling references are filtered
// logically by the relationship reconciler, not by the engine.
const schema = `
CREATE TABLE IF NOT EXISTS books (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	isbn TEXT NOT NULL DEFAULT '',
	publisher TEXT NOT NULL DEFAULT '',
	published_year INTEGER NOT NULL DEFAULT 0,
	language TEXT NOT NULL DEFAULT '',
	page_count INTEGER NOT NULL DEFAULT 0,
	cover_url TEXT NOT NULL DEFAULT '',
	rating INTEGER NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT '',
	location_id TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT '',
	deleted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_books_deleted_at ON books(deleted_at);

CREATE TABLE IF NOT EXISTS authors (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	sort_name TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT '',
	deleted_at TEXT
);

CREATE TABLE IF NOT EXISTS book_authors (
	book_id TEXT NOT NULL,
	author_id TEXT NOT NULL,
	PRIMARY KEY (book_id, author_id)
);

CREATE TABLE IF NOT EXISTS collections (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT '',
	deleted_at TEXT
);

CREATE TABLE IF NOT EXISTS collection_books (
	collection_id TEXT NOT NULL,
	book_id TEXT NOT NULL,
	PRIMARY KEY (collection_id, book_id)
);

CREATE TABLE IF NOT EXISTS storage_locations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT '',
	deleted_at TEXT
);

CREATE TABLE IF NOT EXISTS book_storage_history (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL,
	from_location_id TEXT NOT NULL DEFAULT '',
	to_location_id TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL,
	person TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	deleted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_history_book_id ON book_storage_history(book_id);

CREATE TABLE IF NOT EXISTS reading_sessions (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL,
	started_at TEXT NOT NULL DEFAULT '',
	finished_at TEXT NOT NULL DEFAULT '',
	start_page INTEGER NOT NULL DEFAULT 0,
	end_page INTEGER NOT NULL DEFAULT 0,
	note TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT '',
	deleted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_book_id ON reading_sessions(book_id);

CREATE TABLE IF NOT EXISTS filter_presets (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	filters TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT '',
	deleted_at TEXT
);

CREATE TABLE IF NOT EXISTS vocab_custom (
	id TEXT PRIMARY KEY,
	term TEXT NOT NULL,
	reading TEXT NOT NULL DEFAULT '',
	meaning TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT '',
	deleted_at TEXT
);

CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

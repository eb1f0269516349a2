package sqlite

import "database/sql"

// schema mirrors the archive layout: image identity rows keyed by content
// hash, one description row per image, and a tag vocabulary reserved for
// future curation features.
const schema = `
CREATE TABLE IF NOT EXISTS images (
    content_hash TEXT PRIMARY KEY,
    filepath     TEXT UNIQUE NOT NULL,
    filename     TEXT NOT NULL,
    size         INTEGER NOT NULL,
    width        INTEGER,
    height       INTEGER,
    created_at   TEXT NOT NULL,
    processed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS descriptions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    image_hash TEXT UNIQUE NOT NULL,
    text       TEXT NOT NULL,
    embedding  BLOB,
    FOREIGN KEY (image_hash) REFERENCES images (content_hash)
);

CREATE TABLE IF NOT EXISTS tags (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS image_tags (
    image_hash TEXT NOT NULL,
    tag_id     INTEGER NOT NULL,
    PRIMARY KEY (image_hash, tag_id),
    FOREIGN KEY (image_hash) REFERENCES images (content_hash),
    FOREIGN KEY (tag_id) REFERENCES tags (id)
);

CREATE INDEX IF NOT EXISTS idx_images_filename ON images (filename);
CREATE INDEX IF NOT EXISTS idx_descriptions_image_hash ON descriptions (image_hash);
`

func bootstrapSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

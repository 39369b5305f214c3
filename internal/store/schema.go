package store

// Schema DDL. Links keep the breadcrumb of headings above them twice: as a
// JSON array for decoding and as unit-separator joined text for matching.
const (
	createFiles = `CREATE TABLE IF NOT EXISTS files (
    file_id TEXT PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    creation_date TEXT NOT NULL,
    hash TEXT NOT NULL,
    headings INTEGER NOT NULL,
    links INTEGER NOT NULL,
    data TEXT NOT NULL,
    indexed_at TEXT NOT NULL
);`

	createFileTags = `CREATE TABLE IF NOT EXISTS file_tags (
    file_id TEXT NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (file_id, tag),
    FOREIGN KEY (file_id) REFERENCES files(file_id) ON DELETE CASCADE
);`

	createLinks = `CREATE TABLE IF NOT EXISTS links (
    link_id TEXT PRIMARY KEY,
    file_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    breadcrumb TEXT NOT NULL,
    breadcrumb_text TEXT NOT NULL,
    name TEXT NOT NULL,
    link TEXT NOT NULL,
    description TEXT,
    likeability TEXT,
    read_till INTEGER NOT NULL,
    line_number INTEGER NOT NULL,
    FOREIGN KEY (file_id) REFERENCES files(file_id) ON DELETE CASCADE
);`
)

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_links_file ON links(file_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_links_read_till ON links(read_till)`,
	`CREATE INDEX IF NOT EXISTS idx_file_tags_tag ON file_tags(tag)`,
}

func schemaStatements() []string {
	return append([]string{createFiles, createFileTags, createLinks}, indexes...)
}

package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS events (
    id                   TEXT PRIMARY KEY,
    event_type           TEXT NOT NULL,
    title                TEXT,
    start_ts             TEXT,
    end_ts               TEXT NOT NULL,
    created_at_ts        TEXT NOT NULL,
    payload              TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_events_type_end ON events(event_type, end_ts);
CREATE INDEX IF NOT EXISTS idx_events_end ON events(end_ts);
`

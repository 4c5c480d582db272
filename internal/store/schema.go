package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS trackables (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    kind                 TEXT NOT NULL,
    label                TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS completions (
    item_id              TEXT NOT NULL,
    day                  TEXT NOT NULL,
    completed            INTEGER NOT NULL DEFAULT 0,
    value                REAL NOT NULL DEFAULT 0,
    UNIQUE (item_id, day)
);

CREATE TABLE IF NOT EXISTS manual_events (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    title                TEXT NOT NULL,
    start_time           TEXT NOT NULL,
    end_time             TEXT,
    all_day              INTEGER NOT NULL DEFAULT 0,
    category             TEXT,
    color                TEXT
);

CREATE TABLE IF NOT EXISTS shifts (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    title                TEXT NOT NULL,
    start_time           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    title                TEXT NOT NULL,
    deadline             TEXT,
    done                 INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS appointments (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    title                TEXT NOT NULL,
    start_time           TEXT NOT NULL,
    location             TEXT
);

CREATE TABLE IF NOT EXISTS cards (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    name                 TEXT NOT NULL,
    closing_day          INTEGER NOT NULL,
    due_day              INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS card_purchases (
    id                   TEXT PRIMARY KEY,
    card_id              TEXT NOT NULL,
    description          TEXT,
    total_amount         TEXT NOT NULL,
    installment_count    INTEGER NOT NULL,
    purchase_date        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    description          TEXT,
    amount               TEXT NOT NULL,
    day                  TEXT NOT NULL,
    pending              INTEGER NOT NULL DEFAULT 0,
    card_id              TEXT
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trackables_user ON trackables(user_id);
CREATE INDEX IF NOT EXISTS idx_manual_events_user_start ON manual_events(user_id, start_time);
CREATE INDEX IF NOT EXISTS idx_shifts_user_start ON shifts(user_id, start_time);
CREATE INDEX IF NOT EXISTS idx_tasks_user_deadline ON tasks(user_id, deadline);
CREATE INDEX IF NOT EXISTS idx_appointments_user_start ON appointments(user_id, start_time);
CREATE INDEX IF NOT EXISTS idx_card_purchases_card ON card_purchases(card_id);
CREATE INDEX IF NOT EXISTS idx_ledger_user_day ON ledger_entries(user_id, day);
`

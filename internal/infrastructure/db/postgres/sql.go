package postgres

// save_relations has no FK to events: events may disappear out of band and the
// saved view tolerates the resulting dangling rows.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS events (
  id          TEXT PRIMARY KEY,
  owner_id    TEXT NOT NULL DEFAULT '',
  title       TEXT NOT NULL,
  location    TEXT NOT NULL,
  description TEXT,
  image_url   TEXT,
  start_time  TIMESTAMPTZ NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_events_start_time ON events (start_time DESC, id);

CREATE TABLE IF NOT EXISTS save_relations (
  user_id    TEXT NOT NULL,
  event_id   TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (user_id, event_id)
);

CREATE TABLE IF NOT EXISTS chat_messages (
  id      TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  text    TEXT NOT NULL,
  sent_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_sent_at ON chat_messages (sent_at DESC, id DESC);
`

const insertEventSQL = `
INSERT INTO events (
  id, owner_id, title, location, description, image_url, start_time, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`

const eventColumns = `id, owner_id, title, location, description, image_url, start_time, created_at`

const getEventSQL = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

const getEventsByIDsSQL = `SELECT ` + eventColumns + ` FROM events WHERE id = ANY($1)`

const listRelationsByUserSQL = `
SELECT user_id, event_id, created_at
FROM save_relations
WHERE user_id = $1
ORDER BY created_at ASC, event_id ASC
`

const existsRelationSQL = `SELECT EXISTS (SELECT 1 FROM save_relations WHERE user_id = $1 AND event_id = $2)`

const upsertRelationSQL = `
INSERT INTO save_relations (user_id, event_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, event_id) DO NOTHING
`

const deleteRelationSQL = `DELETE FROM save_relations WHERE user_id = $1 AND event_id = $2`

const danglingRelationsSQL = `
SELECT r.user_id, r.event_id
FROM save_relations r
LEFT JOIN events e ON e.id = r.event_id
WHERE e.id IS NULL
ORDER BY r.user_id, r.event_id
`

const insertChatMessageSQL = `INSERT INTO chat_messages (id, user_id, text, sent_at) VALUES ($1,$2,$3,$4)`

const recentChatMessagesSQL = `
SELECT id, user_id, text, sent_at FROM (
  SELECT id, user_id, text, sent_at
  FROM chat_messages
  ORDER BY sent_at DESC, id DESC
  LIMIT $1
) recent
ORDER BY sent_at ASC, id ASC
`

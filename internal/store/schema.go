package store

// Timestamps are unix milliseconds. Progress rows reference content and
// questions without ON DELETE CASCADE: deleting a lesson that learners have
// history on fails with a constraint error instead of erasing that history.

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS contents (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  body TEXT NOT NULL DEFAULT '',
  order_index INTEGER NOT NULL,
  available INTEGER NOT NULL DEFAULT 0,
  UNIQUE (course_id, order_index)
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  content_id TEXT NOT NULL REFERENCES contents(id) ON DELETE CASCADE,
  text TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_questions_content ON questions(content_id);

CREATE TABLE IF NOT EXISTS options (
  id TEXT PRIMARY KEY,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  is_correct INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_options_question ON options(question_id);

CREATE TABLE IF NOT EXISTS content_progress (
  learner_id TEXT NOT NULL,
  content_id TEXT NOT NULL REFERENCES contents(id),
  answered_count INTEGER NOT NULL DEFAULT 0,
  correct_count INTEGER NOT NULL DEFAULT 0,
  passed INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (learner_id, content_id)
);

CREATE TABLE IF NOT EXISTS question_progress (
  learner_id TEXT NOT NULL,
  question_id TEXT NOT NULL REFERENCES questions(id),
  last_answer_correct INTEGER NOT NULL DEFAULT 0,
  times_correct INTEGER NOT NULL DEFAULT 0,
  times_incorrect INTEGER NOT NULL DEFAULT 0,
  next_review_date INTEGER,
  PRIMARY KEY (learner_id, question_id)
);
CREATE INDEX IF NOT EXISTS idx_question_progress_due ON question_progress(learner_id, next_review_date);

CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  learner_id TEXT NOT NULL,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_event_log_learner ON event_log(learner_id, seq);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS contents (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  body TEXT NOT NULL DEFAULT '',
  order_index INTEGER NOT NULL,
  available BOOLEAN NOT NULL DEFAULT FALSE,
  UNIQUE (course_id, order_index)
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  content_id TEXT NOT NULL REFERENCES contents(id) ON DELETE CASCADE,
  text TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_questions_content ON questions(content_id);

CREATE TABLE IF NOT EXISTS options (
  id TEXT PRIMARY KEY,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_options_question ON options(question_id);

CREATE TABLE IF NOT EXISTS content_progress (
  learner_id TEXT NOT NULL,
  content_id TEXT NOT NULL REFERENCES contents(id),
  answered_count INTEGER NOT NULL DEFAULT 0,
  correct_count INTEGER NOT NULL DEFAULT 0,
  passed BOOLEAN NOT NULL DEFAULT FALSE,
  PRIMARY KEY (learner_id, content_id)
);

CREATE TABLE IF NOT EXISTS question_progress (
  learner_id TEXT NOT NULL,
  question_id TEXT NOT NULL REFERENCES questions(id),
  last_answer_correct BOOLEAN NOT NULL DEFAULT FALSE,
  times_correct INTEGER NOT NULL DEFAULT 0,
  times_incorrect INTEGER NOT NULL DEFAULT 0,
  next_review_date BIGINT,
  PRIMARY KEY (learner_id, question_id)
);
CREATE INDEX IF NOT EXISTS idx_question_progress_due ON question_progress(learner_id, next_review_date);

CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  learner_id TEXT NOT NULL,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_event_log_learner ON event_log(learner_id, seq);
`

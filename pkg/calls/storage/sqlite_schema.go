package storage

// TableName is the name of the call record table.
const TableName = "api_calls"

// Schema creates the call record table. It is applied at startup and is
// safe to run against an existing database; there are no migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS api_calls (
    uuid VARCHAR(64) NOT NULL PRIMARY KEY,
    messages TEXT NOT NULL,
    model VARCHAR(64) NOT NULL,
    response_format VARCHAR(64) NOT NULL,
    temperature REAL NOT NULL,
    reply TEXT,
    prompt_tokens INTEGER,
    completion_tokens INTEGER,
    total_tokens INTEGER,
    call_duration REAL NOT NULL,
    error_flag INTEGER NOT NULL DEFAULT 0,
    call_time DATETIME NOT NULL,
    request_ip VARCHAR(64) NOT NULL
);
`

const insertCall = `
INSERT INTO api_calls (
    uuid, messages, model, response_format, temperature,
    reply, prompt_tokens, completion_tokens, total_tokens,
    call_duration, error_flag, call_time, request_ip
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `
SELECT uuid, messages, model, response_format, temperature,
    reply, prompt_tokens, completion_tokens, total_tokens,
    call_duration, error_flag, call_time, request_ip
FROM api_calls
`

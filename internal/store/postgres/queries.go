package postgres

// DDL applied by Migrate. users is owned by the auth service; it is created
// here too so a fresh database can serve the reminder join.
const queryMigrate = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS applications (
	id UUID PRIMARY KEY,
	owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'Applied',
	date_applied TIMESTAMPTZ NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	job_url TEXT NOT NULL DEFAULT '',
	reminder_date TIMESTAMPTZ NULL,
	attachment_ref TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_owner ON applications (owner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_applications_reminder ON applications (reminder_date) WHERE reminder_date IS NOT NULL;

CREATE TABLE IF NOT EXISTS reminder_mail_log (
	id UUID PRIMARY KEY,
	application_id UUID NOT NULL,
	owner_id UUID NOT NULL,
	address TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
`

const applicationColumns = `id, owner_id, title, company, status, date_applied, notes, job_url, reminder_date, attachment_ref, created_at, updated_at`

const queryInsertApplication = `
INSERT INTO applications (` + applicationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const queryGetApplication = `
SELECT ` + applicationColumns + `
FROM applications
WHERE id = $1`

const queryListByOwner = `
SELECT ` + applicationColumns + `
FROM applications
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

const queryAllByOwner = `
SELECT ` + applicationColumns + `
FROM applications
WHERE owner_id = $1
ORDER BY created_at DESC`

const queryDeleteApplication = `
DELETE FROM applications
WHERE id = $1`

// Half-open interval: reminder_date inside [start, end). The owner join
// resolves the notification address in the same round trip.
const queryReminderWindow = `
SELECT a.id, a.owner_id, a.title, a.company, a.status, a.date_applied, a.notes,
       a.job_url, a.reminder_date, a.attachment_ref, a.created_at, a.updated_at,
       COALESCE(u.email, '')
FROM applications a
LEFT JOIN users u ON u.id = a.owner_id
WHERE a.reminder_date >= $1 AND a.reminder_date < $2`

const queryGetUser = `
SELECT id, email, name, created_at
FROM users
WHERE id = $1`

const queryInsertMailAttempt = `
INSERT INTO reminder_mail_log (id, application_id, owner_id, address, error, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

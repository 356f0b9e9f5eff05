package store

// EmailLogStatus is the terminal state of one processed email.
type EmailLogStatus string

const (
	// EmailLogStatusDrafted means a reply draft was produced.
	EmailLogStatusDrafted EmailLogStatus = "drafted"
	// EmailLogStatusSkipped means the reply rule filtered the email out.
	EmailLogStatusSkipped EmailLogStatus = "skipped"
	// EmailLogStatusFailed means the pipeline errored on this email.
	EmailLogStatusFailed EmailLogStatus = "failed"
)

// EmailLog records one processed inbound email. The (source,
// message_id) pair is unique and doubles as the sweep dedup key.
type EmailLog struct {
	ID  int32
	UID string

	// Source names the mail source ("msgraph", "imap").
	Source    string
	MessageID string

	Sender        string
	SenderAddress string
	Subject       string
	Preview       string

	// Intent is the classified primary intent of the email.
	Intent string
	// Generator records who wrote the draft ("llm", "fallback").
	Generator string
	DraftBody string

	Status    EmailLogStatus
	ErrorCode string
	CreatedTs int64
}

// FindEmailLog specifies the conditions for finding email logs.
// Results are ordered by created_ts descending.
type FindEmailLog struct {
	ID        *int32
	UID       *string
	Source    *string
	MessageID *string
	Status    *EmailLogStatus

	Limit  *int
	Offset *int
}

// DeleteEmailLog specifies the email log to delete.
type DeleteEmailLog struct {
	ID int32
}

package store

// SettingKey names a persisted instance setting.
type SettingKey string

const (
	// SettingSchemaVersion tracks the applied migration version.
	SettingSchemaVersion SettingKey = "schema_version"
	// SettingMailboxTimezone overrides the timezone discovered from
	// the mailbox. Must be a valid IANA name when set.
	SettingMailboxTimezone SettingKey = "mailbox_timezone"
	// SettingSignatureName is the name signed under drafted replies.
	SettingSignatureName SettingKey = "signature_name"
	// SettingReplyRule is the CEL expression gating which emails get
	// a drafted reply. Empty matches everything.
	SettingReplyRule SettingKey = "reply_rule"
)

// Setting is a single instance-wide key/value setting.
type Setting struct {
	Name  SettingKey
	Value string
}

// FindSetting specifies the conditions for finding settings.
type FindSetting struct {
	Name *SettingKey
}

// DeleteSetting specifies the setting to delete.
type DeleteSetting struct {
	Name SettingKey
}

package model

// GeneratedScript tracks one generated test script per catalog case. The ETag
// mirrors the object-storage fingerprint for change detection.
type GeneratedScript struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	TestCaseID string `gorm:"column:test_case_id;type:text;not null;uniqueIndex"`
	Name       string `gorm:"column:name;type:text;not null"`
	StorageKey string `gorm:"column:storage_key;type:text;not null"`
	ETag       string `gorm:"column:etag;type:text"`
	Version    int    `gorm:"column:version;not null;default:1"`
	Status     string `gorm:"column:status;type:text;not null"`
	CreatedAt  string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt  string `gorm:"column:updated_at;type:text;not null"`
}

func (GeneratedScript) TableName() string {
	return "generated_scripts"
}

const (
	ScriptStatusGenerated    = "generated"
	ScriptStatusValidated    = "validated"
	ScriptStatusManualReview = "manual_review"
)

type ScriptExecutionResult struct {
	ID                    uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	TestCaseID            string  `gorm:"column:test_case_id;type:text;not null;index"`
	Result                string  `gorm:"column:result;type:text;not null"`
	ExecutionSeconds      float64 `gorm:"column:execution_seconds;not null;default:0"`
	LogStorageKey         string  `gorm:"column:log_storage_key;type:text"`
	ScreenshotsStorageKey string  `gorm:"column:screenshots_storage_key;type:text"`
	CreatedAt             string  `gorm:"column:created_at;type:text;not null"`
}

func (ScriptExecutionResult) TableName() string {
	return "script_execution_results"
}

const (
	ExecutionResultPending = "pending"
	ExecutionResultPassed  = "passed"
	ExecutionResultFailed  = "failed"
	ExecutionResultError   = "error"
)

package model

// TestCase is the canonical catalog record. TestCaseID is the internally
// generated TC-<n> identifier; SourceID keeps the upstream TestRail id.
// Step sequences are stored as JSON-encoded text.
type TestCase struct {
	ID              uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	TestCaseID      string  `gorm:"column:test_case_id;type:text;not null;uniqueIndex"`
	Title           string  `gorm:"column:title;type:text;not null"`
	TicketsJSON     string  `gorm:"column:tickets_json;type:text"`
	Preconditions   string  `gorm:"column:preconditions;type:text;not null"`
	Steps           string  `gorm:"column:steps;type:text;not null"`
	ExpectedResult  string  `gorm:"column:expected_result;type:text;not null"`
	Comments        string  `gorm:"column:comments;type:text"`
	Project         string  `gorm:"column:project;type:text"`
	Suite           string  `gorm:"column:suite;type:text"`
	Section         string  `gorm:"column:section;type:text"`
	Status          string  `gorm:"column:status;type:text;not null;default:ready;index"`
	SourceID        int64   `gorm:"column:source_id;index"`
	SourceCreatedAt *string `gorm:"column:source_created_at;type:text"`
	SourceUpdatedAt *string `gorm:"column:source_updated_at;type:text"`
	CreatedAt       string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt       string  `gorm:"column:updated_at;type:text;not null"`
}

func (TestCase) TableName() string {
	return "test_cases"
}

const (
	TestCaseStatusReady        = "ready"
	TestCaseStatusAutomated    = "automated"
	TestCaseStatusManualReview = "manual_review"
	TestCaseStatusNoAuto       = "no_auto"
)

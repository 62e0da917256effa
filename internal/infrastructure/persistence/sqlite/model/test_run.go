package model

type TestRun struct {
	ID                   uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	TestRunID            string  `gorm:"column:test_run_id;type:text;not null;uniqueIndex"`
	Name                 string  `gorm:"column:name;type:text;not null"`
	StartedAt            *string `gorm:"column:started_at;type:text"`
	CompletedAt          *string `gorm:"column:completed_at;type:text"`
	SaveBeyondExpiration bool    `gorm:"column:save_beyond_expiration;not null;default:0"`
	CreatedAt            string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt            string  `gorm:"column:updated_at;type:text;not null"`
}

func (TestRun) TableName() string {
	return "test_runs"
}

type TestRunCase struct {
	TestRunID  string `gorm:"column:test_run_id;type:text;not null;primaryKey"`
	TestCaseID string `gorm:"column:test_case_id;type:text;not null;primaryKey"`
}

func (TestRunCase) TableName() string {
	return "test_run_cases"
}

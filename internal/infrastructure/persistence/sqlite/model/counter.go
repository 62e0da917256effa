package model

// Counter holds one monotonically increasing sequence per name, used to mint
// the human-readable TC-<n> and TR-<n> identifiers. Increments happen inside
// the unit-of-work transaction.
type Counter struct {
	Name   string `gorm:"column:name;type:text;primaryKey"`
	LastID int64  `gorm:"column:last_id;not null;default:0"`
}

func (Counter) TableName() string {
	return "counters"
}

const (
	CounterTestCase = "test_case"
	CounterTestRun  = "test_run"
)

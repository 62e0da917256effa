package model

// Customer and Platform are lookup tables mirrored from upstream dynamic
// field definitions. Rows are insert-only; labels are never refreshed.

type Customer struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalID int64  `gorm:"column:external_id;not null;uniqueIndex"`
	Name       string `gorm:"column:name;type:text;not null"`
}

func (Customer) TableName() string {
	return "customers"
}

type Platform struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalID int64  `gorm:"column:external_id;not null;uniqueIndex"`
	Name       string `gorm:"column:name;type:text;not null"`
}

func (Platform) TableName() string {
	return "platforms"
}

type TestCaseCustomer struct {
	TestCaseID string `gorm:"column:test_case_id;type:text;not null;primaryKey"`
	ExternalID int64  `gorm:"column:external_id;not null;primaryKey"`
}

func (TestCaseCustomer) TableName() string {
	return "test_case_customers"
}

type TestCasePlatform struct {
	TestCaseID string `gorm:"column:test_case_id;type:text;not null;primaryKey"`
	ExternalID int64  `gorm:"column:external_id;not null;primaryKey"`
}

func (TestCasePlatform) TableName() string {
	return "test_case_platforms"
}

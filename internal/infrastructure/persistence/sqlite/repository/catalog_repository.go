package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"autoqa/internal/errs"
	"autoqa/internal/infrastructure/persistence/sqlite/model"
	"autoqa/internal/ports"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *CatalogRepository) CreateTestCase(ctx context.Context, input ports.TestCaseCreate) (ports.TestCase, error) {
	if strings.TrimSpace(input.Title) == "" {
		return ports.TestCase{}, errors.New("test case title is required")
	}

	if ports.TxFromContext(ctx) != nil {
		db, err := r.dbFromContext(ctx)
		if err != nil {
			return ports.TestCase{}, err
		}
		return createTestCase(db, input)
	}

	var created ports.TestCase
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := createTestCase(tx, input)
		if err != nil {
			return err
		}
		created = row
		return nil
	}); err != nil {
		return ports.TestCase{}, err
	}
	return created, nil
}

func createTestCase(db *gorm.DB, input ports.TestCaseCreate) (ports.TestCase, error) {
	next, err := nextCounterValue(db, model.CounterTestCase)
	if err != nil {
		return ports.TestCase{}, err
	}

	now := nowUTC()
	row := model.TestCase{
		TestCaseID:      fmt.Sprintf("TC-%d", next),
		Title:           input.Title,
		TicketsJSON:     encodeTickets(input.Tickets),
		Preconditions:   encodeSteps(input.Preconditions),
		Steps:           encodeSteps(input.Steps),
		ExpectedResult:  encodeSteps(input.ExpectedResult),
		Comments:        encodeSteps(input.Comments),
		Project:         input.Project,
		Suite:           input.Suite,
		Section:         input.Section,
		Status:          model.TestCaseStatusReady,
		SourceID:        input.SourceID,
		SourceCreatedAt: input.SourceCreatedAt,
		SourceUpdatedAt: input.SourceUpdatedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.TestCase{}, errs.Wrap(err, "insert test case")
	}
	return mapTestCase(row)
}

func (r *CatalogRepository) ListTestCases(ctx context.Context, filter ports.TestCaseFilter) ([]ports.TestCase, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.TestCase{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if project := strings.TrimSpace(filter.Project); project != "" {
		query = query.Where("project = ?", project)
	}
	if suite := strings.TrimSpace(filter.Suite); suite != "" {
		query = query.Where("suite = ?", suite)
	}
	if section := strings.TrimSpace(filter.Section); section != "" {
		query = query.Where("section = ?", section)
	}

	var rows []model.TestCase
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query test cases")
	}

	items := make([]ports.TestCase, 0, len(rows))
	for _, row := range rows {
		item, err := mapTestCase(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *CatalogRepository) GetTestCase(ctx context.Context, testCaseID string) (ports.TestCase, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.TestCase{}, err
	}

	var row model.TestCase
	if err := db.Where("test_case_id = ?", testCaseID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.TestCase{}, ports.ErrTestCaseNotFound
		}
		return ports.TestCase{}, errs.Wrap(err, "query test case")
	}
	return mapTestCase(row)
}

func (r *CatalogRepository) CreateCustomer(ctx context.Context, entry ports.LookupEntry) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	row := model.Customer{ExternalID: entry.ExternalID, Name: entry.Name}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "insert customer")
	}
	return result.RowsAffected > 0, nil
}

func (r *CatalogRepository) CreatePlatform(ctx context.Context, entry ports.LookupEntry) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	row := model.Platform{ExternalID: entry.ExternalID, Name: entry.Name}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "insert platform")
	}
	return result.RowsAffected > 0, nil
}

func (r *CatalogRepository) FilterCustomerIDs(ctx context.Context, externalIDs []int64) ([]int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return filterExternalIDs(db, &model.Customer{}, externalIDs)
}

func (r *CatalogRepository) FilterPlatformIDs(ctx context.Context, externalIDs []int64) ([]int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return filterExternalIDs(db, &model.Platform{}, externalIDs)
}

func filterExternalIDs(db *gorm.DB, table any, externalIDs []int64) ([]int64, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}

	var found []int64
	if err := db.Model(table).
		Where("external_id IN ?", externalIDs).
		Order("external_id asc").
		Pluck("external_id", &found).Error; err != nil {
		return nil, errs.Wrap(err, "filter external ids")
	}
	return found, nil
}

func (r *CatalogRepository) AttachCustomers(ctx context.Context, testCaseID string, externalIDs []int64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	for _, externalID := range externalIDs {
		row := model.TestCaseCustomer{TestCaseID: testCaseID, ExternalID: externalID}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return errs.Wrapf(err, "attach customer %d to %s", externalID, testCaseID)
		}
	}
	return nil
}

func (r *CatalogRepository) AttachPlatforms(ctx context.Context, testCaseID string, externalIDs []int64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	for _, externalID := range externalIDs {
		row := model.TestCasePlatform{TestCaseID: testCaseID, ExternalID: externalID}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return errs.Wrapf(err, "attach platform %d to %s", externalID, testCaseID)
		}
	}
	return nil
}

func (r *CatalogRepository) CreateTestRun(ctx context.Context, input ports.TestRunCreate) (ports.TestRun, error) {
	if strings.TrimSpace(input.Name) == "" {
		return ports.TestRun{}, errors.New("test run name is required")
	}

	if ports.TxFromContext(ctx) != nil {
		db, err := r.dbFromContext(ctx)
		if err != nil {
			return ports.TestRun{}, err
		}
		return createTestRun(db, input)
	}

	var created ports.TestRun
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := createTestRun(tx, input)
		if err != nil {
			return err
		}
		created = row
		return nil
	}); err != nil {
		return ports.TestRun{}, err
	}
	return created, nil
}

func createTestRun(db *gorm.DB, input ports.TestRunCreate) (ports.TestRun, error) {
	next, err := nextCounterValue(db, model.CounterTestRun)
	if err != nil {
		return ports.TestRun{}, err
	}

	now := nowUTC()
	row := model.TestRun{
		TestRunID:            fmt.Sprintf("TR-%d", next),
		Name:                 input.Name,
		SaveBeyondExpiration: input.SaveBeyondExpiration,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.TestRun{}, errs.Wrap(err, "insert test run")
	}
	return mapTestRun(row), nil
}

func (r *CatalogRepository) AddRunCases(ctx context.Context, testRunID string, testCaseIDs []string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	var run model.TestRun
	if err := db.Where("test_run_id = ?", testRunID).Take(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ErrTestRunNotFound
		}
		return errs.Wrap(err, "query test run")
	}

	for _, testCaseID := range testCaseIDs {
		row := model.TestRunCase{TestRunID: testRunID, TestCaseID: testCaseID}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return errs.Wrapf(err, "add case %s to run %s", testCaseID, testRunID)
		}
	}
	return nil
}

func (r *CatalogRepository) SaveGeneratedScript(ctx context.Context, input ports.GeneratedScriptSave) (ports.GeneratedScript, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.GeneratedScript{}, err
	}

	now := nowUTC()
	var row model.GeneratedScript
	if err := db.Where("test_case_id = ?", input.TestCaseID).Take(&row).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.GeneratedScript{}, errs.Wrap(err, "query generated script")
		}

		row = model.GeneratedScript{
			TestCaseID: input.TestCaseID,
			Name:       input.Name,
			StorageKey: input.StorageKey,
			ETag:       input.ETag,
			Version:    1,
			Status:     model.ScriptStatusGenerated,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := db.Create(&row).Error; err != nil {
			return ports.GeneratedScript{}, errs.Wrap(err, "insert generated script")
		}
		return mapGeneratedScript(row), nil
	}

	// Re-upload bumps the version and resets validation state.
	updates := map[string]any{
		"name":        input.Name,
		"storage_key": input.StorageKey,
		"etag":        input.ETag,
		"version":     row.Version + 1,
		"status":      model.ScriptStatusGenerated,
		"updated_at":  now,
	}
	if err := db.Model(&model.GeneratedScript{}).Where("test_case_id = ?", input.TestCaseID).Updates(updates).Error; err != nil {
		return ports.GeneratedScript{}, errs.Wrap(err, "update generated script")
	}

	row.Name = input.Name
	row.StorageKey = input.StorageKey
	row.ETag = input.ETag
	row.Version++
	row.Status = model.ScriptStatusGenerated
	row.UpdatedAt = now
	return mapGeneratedScript(row), nil
}

func (r *CatalogRepository) GetGeneratedScript(ctx context.Context, testCaseID string) (ports.GeneratedScript, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.GeneratedScript{}, err
	}

	var row model.GeneratedScript
	if err := db.Where("test_case_id = ?", testCaseID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.GeneratedScript{}, ports.ErrScriptNotFound
		}
		return ports.GeneratedScript{}, errs.Wrap(err, "query generated script")
	}
	return mapGeneratedScript(row), nil
}

func (r *CatalogRepository) RecordExecutionResult(ctx context.Context, input ports.ExecutionResultRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	var script model.GeneratedScript
	if err := db.Where("test_case_id = ?", input.TestCaseID).Take(&script).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ErrScriptNotFound
		}
		return errs.Wrap(err, "query generated script")
	}

	row := model.ScriptExecutionResult{
		TestCaseID:            input.TestCaseID,
		Result:                input.Result,
		ExecutionSeconds:      input.ExecutionSeconds,
		LogStorageKey:         input.LogStorageKey,
		ScreenshotsStorageKey: input.ScreenshotsStorageKey,
		CreatedAt:             nowUTC(),
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert execution result")
	}
	return nil
}

func nextCounterValue(db *gorm.DB, name string) (int64, error) {
	var counter model.Counter
	if err := db.Where("name = ?", name).Take(&counter).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errs.Wrap(err, "query counter")
		}
		counter = model.Counter{Name: name}
		if err := db.Create(&counter).Error; err != nil {
			return 0, errs.Wrap(err, "create counter")
		}
	}

	counter.LastID++
	if err := db.Model(&model.Counter{}).Where("name = ?", name).Update("last_id", counter.LastID).Error; err != nil {
		return 0, errs.Wrap(err, "increment counter")
	}
	return counter.LastID, nil
}

func mapTestCase(row model.TestCase) (ports.TestCase, error) {
	tickets, err := decodeTickets(row.TicketsJSON)
	if err != nil {
		return ports.TestCase{}, err
	}
	preconds, err := decodeSteps(row.Preconditions)
	if err != nil {
		return ports.TestCase{}, err
	}
	steps, err := decodeSteps(row.Steps)
	if err != nil {
		return ports.TestCase{}, err
	}
	expected, err := decodeSteps(row.ExpectedResult)
	if err != nil {
		return ports.TestCase{}, err
	}
	comments, err := decodeSteps(row.Comments)
	if err != nil {
		return ports.TestCase{}, err
	}

	return ports.TestCase{
		TestCaseID:      row.TestCaseID,
		Title:           row.Title,
		Tickets:         tickets,
		Preconditions:   preconds,
		Steps:           steps,
		ExpectedResult:  expected,
		Comments:        comments,
		Project:         row.Project,
		Suite:           row.Suite,
		Section:         row.Section,
		Status:          row.Status,
		SourceID:        row.SourceID,
		SourceCreatedAt: row.SourceCreatedAt,
		SourceUpdatedAt: row.SourceUpdatedAt,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func mapTestRun(row model.TestRun) ports.TestRun {
	return ports.TestRun{
		TestRunID:            row.TestRunID,
		Name:                 row.Name,
		StartedAt:            row.StartedAt,
		CompletedAt:          row.CompletedAt,
		SaveBeyondExpiration: row.SaveBeyondExpiration,
		CreatedAt:            row.CreatedAt,
	}
}

func mapGeneratedScript(row model.GeneratedScript) ports.GeneratedScript {
	return ports.GeneratedScript{
		TestCaseID: row.TestCaseID,
		Name:       row.Name,
		StorageKey: row.StorageKey,
		ETag:       row.ETag,
		Version:    row.Version,
		Status:     row.Status,
	}
}

// encodeSteps always yields a JSON array; an empty sequence is "[]", never null.
func encodeSteps(steps []ports.Step) string {
	if len(steps) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(steps)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeSteps(raw string) ([]ports.Step, error) {
	if strings.TrimSpace(raw) == "" {
		return []ports.Step{}, nil
	}
	var steps []ports.Step
	if err := json.Unmarshal([]byte(raw), &steps); err != nil {
		return nil, errs.Wrap(err, "decode steps")
	}
	if steps == nil {
		steps = []ports.Step{}
	}
	return steps, nil
}

func encodeTickets(tickets []string) string {
	if len(tickets) == 0 {
		return ""
	}
	raw, err := json.Marshal(tickets)
	if err != nil {
		return ""
	}
	return string(raw)
}

func decodeTickets(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var tickets []string
	if err := json.Unmarshal([]byte(raw), &tickets); err != nil {
		return nil, errs.Wrap(err, "decode tickets")
	}
	return tickets, nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

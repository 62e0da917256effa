// Package scripts manages generated-script artifacts: object-storage upload
// and fetch with ETag change detection, plus execution-result recording.
package scripts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"autoqa/internal/bootstrap/logging"
	"autoqa/internal/errs"
	"autoqa/internal/ports"
)

type Service struct {
	repo  ports.CatalogRepository
	store ports.ObjectStore
}

func NewService(repo ports.CatalogRepository, store ports.ObjectStore) *Service {
	return &Service{
		repo:  repo,
		store: store,
	}
}

type UploadInput struct {
	TestCaseID string
	Name       string
	Content    []byte
}

func (s *Service) Upload(ctx context.Context, input UploadInput) (ports.GeneratedScript, error) {
	if ctx == nil {
		return ports.GeneratedScript{}, errors.New("context is required")
	}
	if strings.TrimSpace(input.TestCaseID) == "" {
		return ports.GeneratedScript{}, errors.New("test case id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return ports.GeneratedScript{}, errors.New("script name is required")
	}
	if len(input.Content) == 0 {
		return ports.GeneratedScript{}, errors.New("script content is required")
	}

	// The catalog row must exist before an artifact is attached to it.
	if _, err := s.repo.GetTestCase(ctx, input.TestCaseID); err != nil {
		return ports.GeneratedScript{}, err
	}

	key := storageKey(input.TestCaseID, input.Name)
	etag, err := s.store.Put(ctx, key, input.Content, "text/plain; charset=utf-8")
	if err != nil {
		return ports.GeneratedScript{}, errs.Wrap(err, "upload script content")
	}

	script, err := s.repo.SaveGeneratedScript(ctx, ports.GeneratedScriptSave{
		TestCaseID: input.TestCaseID,
		Name:       input.Name,
		StorageKey: key,
		ETag:       etag,
	})
	if err != nil {
		return ports.GeneratedScript{}, errs.Wrap(err, "save script record")
	}

	logging.Info(ctx, "script uploaded",
		slog.String("test_case_id", input.TestCaseID),
		slog.String("storage_key", key),
		slog.Int("version", script.Version),
	)
	return script, nil
}

type FetchResult struct {
	Script  ports.GeneratedScript
	Content []byte
	ETag    string
	// Unchanged reports a conditional fetch whose prior ETag still matches;
	// Content is empty in that case.
	Unchanged bool
}

// Fetch downloads a script. A non-empty priorETag makes the download
// conditional: an unchanged object yields Unchanged=true, not an error.
func (s *Service) Fetch(ctx context.Context, testCaseID string, priorETag string) (FetchResult, error) {
	if ctx == nil {
		return FetchResult{}, errors.New("context is required")
	}
	if strings.TrimSpace(testCaseID) == "" {
		return FetchResult{}, errors.New("test case id is required")
	}

	script, err := s.repo.GetGeneratedScript(ctx, testCaseID)
	if err != nil {
		return FetchResult{}, err
	}

	obj, err := s.store.Get(ctx, script.StorageKey, priorETag)
	if errors.Is(err, ports.ErrObjectUnchanged) {
		logging.Debug(ctx, "script content unchanged", slog.String("test_case_id", testCaseID))
		return FetchResult{Script: script, ETag: priorETag, Unchanged: true}, nil
	}
	if err != nil {
		return FetchResult{}, errs.Wrap(err, "download script content")
	}

	return FetchResult{Script: script, Content: obj.Content, ETag: obj.ETag}, nil
}

var validResults = map[string]struct{}{
	"pending": {},
	"passed":  {},
	"failed":  {},
	"error":   {},
}

func (s *Service) RecordExecution(ctx context.Context, input ports.ExecutionResultRecord) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if strings.TrimSpace(input.TestCaseID) == "" {
		return errors.New("test case id is required")
	}
	if _, ok := validResults[input.Result]; !ok {
		return fmt.Errorf("invalid execution result %q", input.Result)
	}

	if err := s.repo.RecordExecutionResult(ctx, input); err != nil {
		return errs.Wrap(err, "record execution result")
	}

	logging.Info(ctx, "execution result recorded",
		slog.String("test_case_id", input.TestCaseID),
		slog.String("result", input.Result),
	)
	return nil
}

func storageKey(testCaseID string, name string) string {
	return fmt.Sprintf("scripts/%s/%s", testCaseID, name)
}

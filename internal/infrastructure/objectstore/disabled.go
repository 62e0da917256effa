package objectstore

import (
	"context"
	"errors"

	"autoqa/internal/ports"
)

var errNotConfigured = errors.New("object storage is not configured: set storage.endpoint")

// Disabled satisfies ports.ObjectStore when no storage endpoint is
// configured; every call fails with a configuration error.
type Disabled struct{}

var _ ports.ObjectStore = (*Disabled)(nil)

func NewDisabled() *Disabled {
	return &Disabled{}
}

func (*Disabled) Put(context.Context, string, []byte, string) (string, error) {
	return "", errNotConfigured
}

func (*Disabled) Get(context.Context, string, string) (ports.ObjectContent, error) {
	return ports.ObjectContent{}, errNotConfigured
}

func (*Disabled) Delete(context.Context, string) error {
	return errNotConfigured
}

func (*Disabled) Exists(context.Context, string) (bool, error) {
	return false, errNotConfigured
}

func (*Disabled) EnsureBucket(context.Context) error {
	return errNotConfigured
}

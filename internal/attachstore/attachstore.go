package attachstore

import (
	"context"

	"github.com/areggiori/dupin-go/internal/relstore"
)

// AttachStore implements the Attachment Store over one embedded file.
type AttachStore struct {
	file    *relstore.File
	name    string
	maxBody int64
}

// Options configures an AttachStore.
type Options struct {
	MaxBodyBytes int64
}

// Open opens or creates the attachment store's backing file and migrates it.
func Open(path, name string, opts Options) (*AttachStore, error) {
	f, err := relstore.Open(path, relstore.DefaultOptions())
	if err != nil {
		return nil, err
	}
	if err := relstore.Migrate(context.Background(), f.DB(), schemaSteps); err != nil {
		f.Close()
		return nil, err
	}
	return &AttachStore{file: f, name: name, maxBody: opts.MaxBodyBytes}, nil
}

func (s *AttachStore) Name() string         { return s.name }
func (s *AttachStore) File() *relstore.File { return s.file }
func (s *AttachStore) Close() error         { return s.file.Close() }

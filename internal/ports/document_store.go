package ports

import "context"

// DocumentStore archives report files. path is relative to the configured
// document library root.
type DocumentStore interface {
	UploadFile(ctx context.Context, path string, content []byte) error
}

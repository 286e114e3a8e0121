package storage

import (
	"context"
	"io"
)

// UploadResult описывает сохраненный объект. Location — публичный URL,
// под которым объект доступен клиентам.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — хранилище медиа событий (постеры). Ключи задает
// вызывающий: "events/{eventID}/poster".
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

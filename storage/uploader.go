package storage

import (
	"context"
	"io"
)

// UploadResult представляет итог загрузки файла в хранилище.
type UploadResult struct {
	Key      string // ключ объекта в бакете
	Location string // публичный URL загруженного файла
	ETag     string
}

// FileUploader представляет хранилище файлов лиги, сейчас это логотипы.
type FileUploader interface {
	// Upload записывает содержимое reader под указанным ключом.
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Delete удаляет объект по ключу. Отсутствующий объект не считается ошибкой.
	Delete(ctx context.Context, key string) error

	// GetPublicURL строит публичный URL по ключу без обращения к хранилищу.
	GetPublicURL(key string) string
}

package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/light-bringer/catalog-service/internal/app/catalog/contracts"
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/models"
	"github.com/light-bringer/catalog-service/internal/pkg/envelope"
)

// Files decorates the file entity orchestrator with blob storage: upload
// payloads are moved out of the document into a blob before persisting,
// reads replace the stored URL with a short-lived signed one, and hard
// deletes remove the blob alongside the record.
//
// With no blob store configured the decorator passes requests through
// untouched; records then carry whatever FILE URL the caller provided.
type Files struct {
	svc    *Service
	blobs  contracts.BlobStore
	logger *slog.Logger
}

// NewFiles wraps the file orchestrator with the given blob store. A nil
// blob store is allowed and disables the upload and signing behavior.
func NewFiles(svc *Service, blobs contracts.BlobStore, logger *slog.Logger) *Files {
	if logger == nil {
		logger = slog.Default()
	}
	return &Files{svc: svc, blobs: blobs, logger: logger.With(slog.String("entity", models.FilesCollection))}
}

// Service returns the wrapped orchestrator.
func (f *Files) Service() *Service {
	return f.svc
}

// Entity returns the descriptor of the wrapped orchestrator.
func (f *Files) Entity() models.Entity {
	return f.svc.Entity()
}

// Handle dispatches like the wrapped orchestrator, adding the blob
// behavior around the write and read paths.
func (f *Files) Handle(ctx context.Context, req Request) *envelope.Bitacora {
	switch req.ProcessType {
	case OpAddOne:
		return f.handleWrite(ctx, req, nil)

	case OpUpdateOne:
		var prior domain.Record
		if backend, err := domain.ParseBackend(req.DBServer); err == nil && req.Key != "" {
			prior, _ = f.svc.GetOneBy(ctx, backend, f.svc.entity.KeyField, req.Key)
		}
		return f.handleWrite(ctx, req, prior)

	case OpDeleteHard:
		return f.handleDeleteHard(ctx, req)

	default:
		b := f.svc.Handle(ctx, req)
		if b.Success {
			f.decorate(b)
		}
		return b
	}
}

// handleWrite stages the blob upload, runs the wrapped write, and cleans
// up on either side of the outcome: the fresh blob when the write failed,
// the superseded blob when an update replaced it.
func (f *Files) handleWrite(ctx context.Context, req Request, prior domain.Record) *envelope.Bitacora {
	payload := req.Payload.Clone()
	blobName, err := f.stageUpload(ctx, payload)
	if err != nil {
		b := envelope.New()
		b.ProcessType = req.ProcessType
		b.LoggedUser = req.LoggedUser
		return b.FailErr(fmt.Sprintf("%s %s", req.ProcessType, models.FilesCollection), err)
	}
	req.Payload = payload

	b := f.svc.Handle(ctx, req)
	if !b.Success {
		if blobName != "" {
			f.deleteBlob(ctx, blobName)
		}
		return b
	}

	if blobName != "" && prior != nil {
		if old := prior.String(models.FileBlobName); old != "" && old != blobName {
			f.deleteBlob(ctx, old)
		}
	}
	f.decorate(b)
	return b
}

func (f *Files) handleDeleteHard(ctx context.Context, req Request) *envelope.Bitacora {
	var blobName string
	if backend, err := domain.ParseBackend(req.DBServer); err == nil && req.Key != "" {
		if rec, err := f.svc.GetOneBy(ctx, backend, f.svc.entity.KeyField, req.Key); err == nil {
			blobName = rec.String(models.FileBlobName)
		}
	}

	b := f.svc.Handle(ctx, req)
	if b.Success && blobName != "" {
		f.deleteBlob(ctx, blobName)
	}
	return b
}

// stageUpload moves a base64 FILECONTENT payload into blob storage and
// rewrites the record to carry the blob URL instead. Returns the name of
// the blob it created, empty when there was nothing to upload.
func (f *Files) stageUpload(ctx context.Context, payload domain.Record) (string, error) {
	content := payload.String(models.FileContent)
	if content == "" {
		delete(payload, models.FileContent)
		return "", nil
	}
	if f.blobs == nil {
		return "", domain.Validationf("file content upload requires blob storage to be configured")
	}

	// Tolerate data-URI payloads ("data:image/png;base64,....").
	contentType := payload.String(models.FileMimeType)
	if idx := strings.Index(content, ";base64,"); idx >= 0 {
		if contentType == "" {
			contentType = strings.TrimPrefix(content[:idx], "data:")
		}
		content = content[idx+len(";base64,"):]
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	raw, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return "", domain.Validationf("field %s is not valid base64: %v", models.FileContent, err)
	}
	if len(raw) == 0 {
		return "", domain.Validationf("field %s decoded to empty content", models.FileContent)
	}

	name := fmt.Sprintf("%s-%s", payload.String(models.FileID), uuid.NewString())
	url, err := f.blobs.Upload(ctx, name, raw, contentType)
	if err != nil {
		return "", fmt.Errorf("uploading file content: %w", err)
	}

	delete(payload, models.FileContent)
	delete(payload, models.FileMimeType)
	payload[models.FileURL] = url
	payload[models.FileBlobName] = name
	return name, nil
}

// decorate replaces the stored FILE URL with a signed read URL on every
// record of the response payload. Signing failures keep the stored URL.
func (f *Files) decorate(b *envelope.Bitacora) {
	if f.blobs == nil {
		return
	}
	switch data := b.DataRes.(type) {
	case domain.Record:
		f.signRecord(data)
	case []domain.Record:
		for _, rec := range data {
			f.signRecord(rec)
		}
	}
}

func (f *Files) signRecord(rec domain.Record) {
	name := rec.String(models.FileBlobName)
	if name == "" {
		return
	}
	url, err := f.blobs.ReadURL(name)
	if err != nil {
		f.logger.Warn("signing read URL failed",
			slog.String("blob", name),
			slog.String("error", err.Error()))
		return
	}
	rec[models.FileURL] = url
}

func (f *Files) deleteBlob(ctx context.Context, name string) {
	if f.blobs == nil {
		return
	}
	if err := f.blobs.Delete(ctx, name); err != nil && !errors.Is(err, context.Canceled) {
		f.logger.Warn("blob deletion failed",
			slog.String("blob", name),
			slog.String("error", err.Error()))
	}
}

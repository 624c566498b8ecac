package models

import (
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
)

// Field name constants for the ZTPRODUCTS_FILES collection.
const (
	FilesCollection = "ZTPRODUCTS_FILES"

	FileID    = "FILEID"
	FileType  = "FILETYPE"
	FileURL   = "FILE"
	Principal = "PRINCIPAL"

	// FileContent carries base64 payload bytes on upload requests. It is
	// consumed by the blob layer and never persisted.
	FileContent = "FILECONTENT"

	// FileMimeType optionally declares the content type of an upload.
	FileMimeType = "MIMETYPE"

	// FileBlobName records the blob object the FILE URL points at, so
	// signed read URLs and blob deletion can find it later.
	FileBlobName = "BLOBNAME"
)

// Accepted FILETYPE values.
var fileTypes = map[string]struct{}{
	"IMG": {}, "PDF": {}, "DOC": {}, "VIDEO": {}, "OTHER": {},
}

// File describes a binary attachment of a product (optionally of one of
// its presentations). The FILE field holds the blob URL.
func File() Entity {
	return Entity{
		Name:                FilesCollection,
		KeyField:            FileID,
		Required:            []string{FileID, SKUID, FileType},
		ListIncludesDeleted: true,
		References: []Reference{
			{Field: SKUID, Entity: ProductsCollection},
			{Field: IdPresentaOK, Entity: PresentationsCollection, Optional: true},
		},
		Lookups: []Lookup{
			{Op: "GetBySKUID", Field: SKUID, Many: true, ExcludeDeleted: true},
		},
		Validate: validateFile,
	}
}

func validateFile(rec domain.Record) error {
	ft, _ := rec[FileType].(string)
	if _, ok := fileTypes[ft]; !ok {
		return domain.Validationf("field %s must be one of IMG, PDF, DOC, VIDEO, OTHER", FileType)
	}
	return nil
}

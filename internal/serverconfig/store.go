package serverconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	backupSuffixConstant              = ".bak"
	documentReadErrorTemplateConstant = "unable to read server configuration %s: %w"
	documentFilePermissionConstant    = 0o644

	documentLoadedMessageConstant = "loaded server configuration"
	backupCreatedMessageConstant  = "created server configuration backup"
	documentSavedMessageConstant  = "saved server configuration"
	logFieldDocumentPathConstant  = "document_path"
	logFieldBackupPathConstant    = "backup_path"
)

// Store persists the server-configuration document at a fixed path.
type Store struct {
	documentPath string
	logger       *zap.Logger
}

// NewStore constructs a Store bound to the provided document path.
func NewStore(documentPath string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{documentPath: documentPath, logger: logger}
}

// Path reports the document path the store reads from and writes to.
func (store *Store) Path() string {
	return store.documentPath
}

// Load reads and parses the document. A missing file surfaces as
// DocumentNotFoundError and malformed content as DocumentParseError.
func (store *Store) Load() (Document, error) {
	documentData, readError := os.ReadFile(store.documentPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return Document{}, DocumentNotFoundError{Path: store.documentPath}
		}
		return Document{}, fmt.Errorf(documentReadErrorTemplateConstant, store.documentPath, readError)
	}

	var document Document
	if parseError := yaml.Unmarshal(documentData, &document); parseError != nil {
		return Document{}, DocumentParseError{Path: store.documentPath, Cause: parseError}
	}

	store.logger.Info(documentLoadedMessageConstant, zap.String(logFieldDocumentPathConstant, store.documentPath))

	return document, nil
}

// Save persists the document. When backup is requested and a document already
// exists, its current bytes are copied to <path>.bak first; a failed backup
// aborts the save and leaves the original untouched.
func (store *Store) Save(document Document, backup bool) error {
	if backup {
		if backupError := store.backupExistingDocument(); backupError != nil {
			return backupError
		}
	}

	documentData, marshalError := yaml.Marshal(document)
	if marshalError != nil {
		return DocumentSaveError{Path: store.documentPath, Cause: marshalError}
	}

	if writeError := os.WriteFile(store.documentPath, documentData, documentFilePermissionConstant); writeError != nil {
		return DocumentSaveError{Path: store.documentPath, Cause: writeError}
	}

	store.logger.Info(documentSavedMessageConstant, zap.String(logFieldDocumentPathConstant, store.documentPath))

	return nil
}

func (store *Store) backupExistingDocument() error {
	existingData, readError := os.ReadFile(store.documentPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil
		}
		return DocumentSaveError{Path: store.documentPath, Cause: readError}
	}

	backupPath := store.documentPath + backupSuffixConstant
	if writeError := os.WriteFile(backupPath, existingData, documentFilePermissionConstant); writeError != nil {
		return DocumentSaveError{Path: backupPath, Cause: writeError}
	}

	store.logger.Info(backupCreatedMessageConstant, zap.String(logFieldBackupPathConstant, backupPath))

	return nil
}

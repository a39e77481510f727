package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"chinba-client/core/constants"
	"chinba-client/core/errors"
	"chinba-client/core/logger"
	"chinba-client/core/utils"
	"chinba-client/modules/schedule/entity"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// DraftStoreInterface persists one in-progress slot set per event, scoped to
// the local browsing context rather than an authenticated identity
type DraftStoreInterface interface {
	// Load returns the stored draft set, or (nil, false) when no usable
	// draft exists. Corrupt records count as absent, never as an error.
	Load(eventID uuid.UUID) (*entity.SlotSet, bool)
	Save(eventID uuid.UUID, set *entity.SlotSet) *errors.AppError
	Clear(eventID uuid.UUID) *errors.AppError
	ContextID() string
}

// FileDraftStore keeps draft records as JSON files in a local directory,
// one file per (namespace, event) key
type FileDraftStore struct {
	dir       string
	namespace string
	contextID string
}

// NewFileDraftStore opens (or initializes) the draft directory. The browsing
// context ID is created on first use and survives restarts, so drafts written
// by an earlier session in the same directory are found again.
func NewFileDraftStore(dir, namespace string) (*FileDraftStore, *errors.AppError) {
	if namespace == "" {
		namespace = constants.DraftNamespace
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create draft directory", err)
	}

	store := &FileDraftStore{dir: dir, namespace: namespace}
	store.contextID = store.loadOrCreateContextID()

	logger.Info("DraftStore initialized", "dir", dir, "namespace", namespace, "context_id", store.contextID)
	return store, nil
}

func (s *FileDraftStore) ContextID() string {
	return s.contextID
}

func (s *FileDraftStore) Load(eventID uuid.UUID) (*entity.SlotSet, bool) {
	raw, err := os.ReadFile(s.path(eventID))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("DraftStore:Load:ReadFailed", "error", err, "event_id", eventID.String())
		}
		return nil, false
	}

	var draft entity.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		// Corrupt data is treated as an absent draft, never a crash
		logger.Warn("DraftStore:Load:CorruptDraft", "event_id", eventID.String())
		return nil, false
	}

	set, appErr := draft.SlotSet()
	if appErr != nil {
		logger.Warn("DraftStore:Load:MalformedSlots", "event_id", eventID.String())
		return nil, false
	}

	return set, true
}

func (s *FileDraftStore) Save(eventID uuid.UUID, set *entity.SlotSet) *errors.AppError {
	raw, err := json.Marshal(entity.NewDraft(set))
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to serialize draft", err)
	}

	// Write-then-rename so a crash mid-write cannot leave a torn record
	path := s.path(eventID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		logger.Error("DraftStore:Save:WriteFailed", "error", err, "event_id", eventID.String())
		return errors.NewAppError(errors.ErrInternalServer, "failed to write draft", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		logger.Error("DraftStore:Save:RenameFailed", "error", err, "event_id", eventID.String())
		return errors.NewAppError(errors.ErrInternalServer, "failed to write draft", err)
	}

	return nil
}

func (s *FileDraftStore) Clear(eventID uuid.UUID) *errors.AppError {
	if err := os.Remove(s.path(eventID)); err != nil && !os.IsNotExist(err) {
		logger.Error("DraftStore:Clear", "error", err, "event_id", eventID.String())
		return errors.NewAppError(errors.ErrInternalServer, "failed to clear draft", err)
	}
	return nil
}

// path builds the draft file path from the composite storage key
// "<namespace>-<event id>", slugified into a safe file name
func (s *FileDraftStore) path(eventID uuid.UUID) string {
	key := s.namespace + "-" + eventID.String()
	return filepath.Join(s.dir, slug.Make(key)+constants.DraftFileExt)
}

func (s *FileDraftStore) loadOrCreateContextID() string {
	path := filepath.Join(s.dir, constants.ContextFileName)
	if raw, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id
		}
	}

	id := utils.GenerateID(constants.ContextIDLength)
	if err := os.WriteFile(path, []byte(id), 0o644); err != nil {
		logger.Warn("DraftStore:ContextID:PersistFailed", "error", err)
	}
	return id
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
)

var documentFilters = map[string]string{
	"category":  "category",
	"modelType": "relatedTo.modelType",
}

type DocumentService struct {
	documents ports.DocumentRepository
	users     ports.UserRepository
	files     ports.FileStorage
	logger    zerolog.Logger
}

func NewDocumentService(documents ports.DocumentRepository, users ports.UserRepository, files ports.FileStorage, logger zerolog.Logger) *DocumentService {
	return &DocumentService{documents: documents, users: users, files: files, logger: logger}
}

// Upload stores the file first and then records the document. A failed
// record insert leaves the stored file behind.
func (s *DocumentService) Upload(ctx context.Context, actor domain.Actor, in ports.DocumentUploadInput) (*ports.DocumentView, error) {
	if err := policy.Check(actor, policy.ResourceDocument, policy.ActionCreate, nil); err != nil {
		return nil, err
	}
	if in.File.Content == nil {
		return nil, domain.ErrFileRequired
	}

	d := &domain.Document{DocumentMetadata: in.Metadata, UploadedBy: actor.UserID}
	d.ApplyDefaults()
	if err := validate.Struct(d); err != nil {
		return nil, err
	}

	stored, err := s.files.Store(ctx, in.File)
	if err != nil {
		return nil, err
	}
	d.StoredFile = stored

	id, err := nextSequenceID(ctx, s.documents, domain.PrefixDocument)
	if err != nil {
		s.orphaned(stored, err)
		return nil, err
	}
	now := time.Now().UTC()
	d.DocumentID = id
	d.CreatedAt, d.UpdatedAt = now, now

	if err := s.documents.Create(ctx, d); err != nil {
		s.orphaned(stored, err)
		return nil, err
	}
	s.logger.Info().Str("document_id", d.DocumentID).Int64("size", d.FileSize).Str("by", actor.UserID).Msg("document uploaded")
	return s.view(ctx, d)
}

// List returns non-archived documents whose view list includes the caller's role.
func (s *DocumentService) List(ctx context.Context, actor domain.Actor, p ports.ListParams) (*domain.PageResult[*ports.DocumentView], error) {
	scope, err := authorize(actor, policy.ResourceDocument, policy.ActionList)
	if err != nil {
		return nil, err
	}
	q := listQuery(p, documentFilters, scope)
	q.Filters = withActive(q.Filters)
	items, total, err := s.documents.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	views, err := s.views(ctx, items)
	if err != nil {
		return nil, err
	}
	return domain.NewPageResult(views, total, q.Page), nil
}

func (s *DocumentService) Get(ctx context.Context, actor domain.Actor, id string) (*ports.DocumentView, error) {
	d, err := s.fetch(ctx, actor, id, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, d)
}

func (s *DocumentService) Download(ctx context.Context, actor domain.Actor, id string) (*domain.Document, io.ReadCloser, error) {
	d, err := s.fetch(ctx, actor, id, policy.ActionRead)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.files.Open(ctx, d.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return d, rc, nil
}

// OpenFile serves a stored file by name. The name must belong to the current
// or an earlier version of a document the caller may read.
func (s *DocumentService) OpenFile(ctx context.Context, actor domain.Actor, name string) (*domain.Document, io.ReadCloser, error) {
	if !policy.Permits(actor.Role, policy.ResourceDocument, policy.ActionRead) {
		return nil, nil, domain.ErrForbidden
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, nil, domain.ErrNotFound
	}
	d, err := s.documents.FindByFile(ctx, domain.UploadPath+name)
	if err != nil {
		return nil, nil, err
	}
	if err := checkACL(actor, d, policy.ActionRead); err != nil {
		return nil, nil, err
	}
	rc, err := s.files.Open(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return d, rc, nil
}

// Update merges patch into the document metadata.
func (s *DocumentService) Update(ctx context.Context, actor domain.Actor, id string, patch json.RawMessage) (*ports.DocumentView, error) {
	d, err := s.fetch(ctx, actor, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := mergePatch(&d.DocumentMetadata, patch); err != nil {
		return nil, err
	}
	if d.AccessControl.View == nil {
		d.AccessControl.View = []domain.Role{}
	}
	if d.AccessControl.Edit == nil {
		d.AccessControl.Edit = []domain.Role{}
	}
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	d.UpdatedAt = time.Now().UTC()
	if err := s.documents.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.view(ctx, d)
}

// AddVersion replaces the file, pushing the previous one into the history.
func (s *DocumentService) AddVersion(ctx context.Context, actor domain.Actor, id, changes string, file ports.Upload) (*ports.DocumentView, error) {
	d, err := s.fetch(ctx, actor, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if file.Content == nil {
		return nil, domain.ErrFileRequired
	}
	stored, err := s.files.Store(ctx, file)
	if err != nil {
		return nil, err
	}

	d.NewVersion(stored, changes, actor.UserID, time.Now().UTC())
	if err := s.documents.Update(ctx, d); err != nil {
		s.orphaned(stored, err)
		return nil, err
	}
	s.logger.Info().Str("document_id", d.DocumentID).Int("version", d.Version.Current).Msg("document version added")
	return s.view(ctx, d)
}

// Archive hides a document from listings. Archived documents stay readable by id.
func (s *DocumentService) Archive(ctx context.Context, actor domain.Actor, id string) error {
	if err := policy.Check(actor, policy.ResourceDocument, policy.ActionArchive, nil); err != nil {
		return err
	}
	if err := s.documents.Archive(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("id", id).Str("by", actor.UserID).Msg("document archived")
	return nil
}

func (s *DocumentService) fetch(ctx context.Context, actor domain.Actor, id string, act policy.Action) (*domain.Document, error) {
	if !policy.Permits(actor.Role, policy.ResourceDocument, act) {
		return nil, domain.ErrForbidden
	}
	d, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkACL(actor, d, act); err != nil {
		return nil, err
	}
	return d, nil
}

func checkACL(actor domain.Actor, d *domain.Document, act policy.Action) error {
	acl := d.AccessControl
	return policy.Check(actor, policy.ResourceDocument, act, &policy.Target{ACL: &acl})
}

func (s *DocumentService) orphaned(f domain.StoredFile, cause error) {
	s.logger.Warn().Err(cause).Str("storage_key", f.StorageKey).Msg("stored file left without a document record")
}

func (s *DocumentService) view(ctx context.Context, d *domain.Document) (*ports.DocumentView, error) {
	views, err := s.views(ctx, []*domain.Document{d})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *DocumentService) views(ctx context.Context, items []*domain.Document) ([]*ports.DocumentView, error) {
	ids := make([]string, 0, len(items))
	for _, d := range items {
		ids = append(ids, d.UploadedBy)
	}
	users, err := userSummaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*ports.DocumentView, 0, len(items))
	for _, d := range items {
		out = append(out, &ports.DocumentView{Document: d, UploadedBy: users[d.UploadedBy]})
	}
	return out, nil
}

// withActive adds the isArchived = false condition every document listing carries.
func withActive(filters map[string]any) map[string]any {
	if filters == nil {
		filters = map[string]any{}
	}
	filters["isArchived"] = false
	return filters
}

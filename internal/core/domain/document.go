package domain

import (
	"slices"
	"time"
)

type RelatedTo struct {
	ModelType string `json:"modelType" bson:"modelType" validate:"required,oneof=Employee Client Project User"`
	ModelID   string `json:"modelId"   bson:"modelId"   validate:"required,mongodb"`
}

// AccessControl lists the roles allowed to view or edit a document.
type AccessControl struct {
	View []Role `json:"view" bson:"view" validate:"dive,oneof=admin hr client_manager employee"`
	Edit []Role `json:"edit" bson:"edit" validate:"dive,oneof=admin hr client_manager employee"`
}

// DefaultAccessControl is applied when an upload carries no ACL.
func DefaultAccessControl() AccessControl {
	return AccessControl{
		View: []Role{RoleAdmin, RoleHR, RoleClientManager},
		Edit: []Role{RoleAdmin, RoleHR},
	}
}

func (a AccessControl) CanView(r Role) bool { return slices.Contains(a.View, r) }
func (a AccessControl) CanEdit(r Role) bool { return slices.Contains(a.Edit, r) }

type VersionEntry struct {
	Version   int       `json:"version"   bson:"version"`
	Changes   string    `json:"changes"   bson:"changes"`
	UpdatedBy string    `json:"updatedBy" bson:"updatedBy"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
	FileURL   string    `json:"fileUrl"   bson:"fileUrl"`
}

type Version struct {
	Current int            `json:"current" bson:"current"`
	History []VersionEntry `json:"history" bson:"history"`
}

// DocumentMetadata is the editable part of a document.
type DocumentMetadata struct {
	Title         string        `json:"title"         bson:"title"       validate:"required"`
	Description   string        `json:"description"   bson:"description"`
	Category      string        `json:"category"      bson:"category"    validate:"required,oneof=Employee Client Project Contract Financial Other"`
	RelatedTo     RelatedTo     `json:"relatedTo"     bson:"relatedTo"`
	AccessControl AccessControl `json:"accessControl" bson:"accessControl"`
}

// UploadPath prefixes the fileUrl of every stored file.
const UploadPath = "/uploads/"

// StoredFile describes an uploaded file as persisted by a file store.
type StoredFile struct {
	FileName   string `json:"fileName" bson:"fileName"`
	FileURL    string `json:"fileUrl"  bson:"fileUrl"`
	StorageKey string `json:"-"        bson:"storageKey"`
	FileSize   int64  `json:"fileSize" bson:"fileSize"`
	FileType   string `json:"fileType" bson:"fileType"`
	MimeType   string `json:"mimeType" bson:"mimeType"`
}

// Document is an uploaded file with metadata, versions and an ACL.
type Document struct {
	ID               string `json:"id"         bson:"_id,omitempty"`
	DocumentID       string `json:"documentId" bson:"documentId"`
	DocumentMetadata `bson:",inline"`
	StoredFile       `bson:",inline"`
	Version          Version   `json:"version"    bson:"version"`
	UploadedBy       string    `json:"uploadedBy" bson:"uploadedBy"`
	IsArchived       bool      `json:"isArchived" bson:"isArchived"`
	CreatedAt        time.Time `json:"createdAt"  bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"  bson:"updatedAt"`
}

// ApplyDefaults fills schema defaults that the caller left empty.
func (d *Document) ApplyDefaults() {
	if d.AccessControl.View == nil && d.AccessControl.Edit == nil {
		d.AccessControl = DefaultAccessControl()
	}
	if d.AccessControl.View == nil {
		d.AccessControl.View = []Role{}
	}
	if d.AccessControl.Edit == nil {
		d.AccessControl.Edit = []Role{}
	}
	if d.Version.Current == 0 {
		d.Version.Current = 1
	}
	if d.Version.History == nil {
		d.Version.History = []VersionEntry{}
	}
}

// NewVersion pushes the current file into history and bumps the version.
func (d *Document) NewVersion(file StoredFile, changes, updatedBy string, at time.Time) {
	d.Version.History = append(d.Version.History, VersionEntry{
		Version:   d.Version.Current,
		Changes:   changes,
		UpdatedBy: updatedBy,
		UpdatedAt: at,
		FileURL:   d.FileURL,
	})
	d.Version.Current++
	d.StoredFile = file
	d.UpdatedAt = at
}

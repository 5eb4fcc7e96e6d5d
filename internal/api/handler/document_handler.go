package handler

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-system/internal/api/metrics"
	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/ports"
)

// uploadField is the multipart field carrying the document file.
const uploadField = "document"

type DocumentHandler struct {
	documents ports.DocumentService
}

func NewDocumentHandler(documents ports.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload handles POST /api/documents/upload.
//
// @Summary      Upload a document
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        document              formData  file    true   "File (pdf, doc, docx, xls, xlsx, txt, jpg, jpeg, png)"
// @Param        title                 formData  string  true   "Title"
// @Param        description           formData  string  false  "Description"
// @Param        category              formData  string  true   "Category"
// @Param        relatedTo.modelType   formData  string  true   "Related record type"
// @Param        relatedTo.modelId     formData  string  true   "Related record id"
// @Param        accessControl.view    formData  []string false "Roles allowed to view"
// @Param        accessControl.edit    formData  []string false "Roles allowed to edit"
// @Success      201  {object}  ports.DocumentView
// @Failure      400  {object}  map[string]string
// @Failure      413  {object}  map[string]string
// @Router       /documents/upload [post]
func (h *DocumentHandler) Upload(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	file, closeFile, err := formUpload(c)
	if err != nil {
		return err
	}
	defer closeFile()

	view, err := h.documents.Upload(c.Request().Context(), actor, ports.DocumentUploadInput{
		Metadata: domain.DocumentMetadata{
			Title:       strings.TrimSpace(c.FormValue("title")),
			Description: c.FormValue("description"),
			Category:    c.FormValue("category"),
			RelatedTo: domain.RelatedTo{
				ModelType: c.FormValue("relatedTo.modelType"),
				ModelID:   c.FormValue("relatedTo.modelId"),
			},
			AccessControl: domain.AccessControl{
				View: formRoles(c, "accessControl.view"),
				Edit: formRoles(c, "accessControl.edit"),
			},
		},
		File: file,
	})
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("document").Inc()
	metrics.UploadSizeBytes.Observe(float64(view.FileSize))
	return c.JSON(http.StatusCreated, view)
}

// List handles GET /api/documents.
//
// @Summary      List documents visible to the caller's role
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "Page number"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Param        search     query     string  false  "Title, description or file name substring"
// @Param        category   query     string  false  "Category"
// @Param        modelType  query     string  false  "Related record type"
// @Success      200        {object}  pageResponse[ports.DocumentView]
// @Router       /documents [get]
func (h *DocumentHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	page, err := h.documents.List(c.Request().Context(), actor, listParams(c, "category", "modelType"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(page))
}

// Get handles GET /api/documents/:id.
//
// @Summary      Get a document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document record id"
// @Success      200  {object}  ports.DocumentView
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /documents/{id} [get]
func (h *DocumentHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	view, err := h.documents.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Download handles GET /api/documents/:id/download.
//
// @Summary      Download the current file of a document
// @Tags         documents
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id   path      string  true  "Document record id"
// @Success      200  {file}    file
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /documents/{id}/download [get]
func (h *DocumentHandler) Download(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	doc, rc, err := h.documents.Download(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, attachment(doc.FileName))
	return c.Stream(http.StatusOK, contentType(doc.MimeType, doc.FileName), rc)
}

// Update handles PUT /api/documents/:id.
//
// @Summary      Update document metadata
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Document record id"
// @Param        body  body      object  true  "Metadata fields to change"
// @Success      200   {object}  ports.DocumentView
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /documents/{id} [put]
func (h *DocumentHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	patch, err := readPatch(c)
	if err != nil {
		return err
	}
	view, err := h.documents.Update(c.Request().Context(), actor, c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// AddVersion handles POST /api/documents/:id/versions.
//
// @Summary      Upload a new version
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true   "Document record id"
// @Param        document  formData  file    true   "New file"
// @Param        changes   formData  string  false  "Description of the changes"
// @Success      200  {object}  ports.DocumentView
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /documents/{id}/versions [post]
func (h *DocumentHandler) AddVersion(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	file, closeFile, err := formUpload(c)
	if err != nil {
		return err
	}
	defer closeFile()

	view, err := h.documents.AddVersion(c.Request().Context(), actor, c.Param("id"), c.FormValue("changes"), file)
	if err != nil {
		return err
	}
	metrics.UploadSizeBytes.Observe(float64(view.FileSize))
	return c.JSON(http.StatusOK, view)
}

// Archive handles PUT /api/documents/:id/archive.
//
// @Summary      Archive a document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document record id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /documents/{id}/archive [put]
func (h *DocumentHandler) Archive(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.documents.Archive(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	metrics.RecordsDeletedTotal.WithLabelValues("document").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "document archived"})
}

// ServeFile handles GET /uploads/:name, the URL recorded in fileUrl. The
// owning document's view list applies, as for Download.
//
// @Summary      Fetch a stored upload by name
// @Tags         documents
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        name  path      string  true  "Stored file name"
// @Success      200   {file}    file
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /uploads/{name} [get]
func (h *DocumentHandler) ServeFile(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	name := c.Param("name")
	doc, rc, err := h.documents.OpenFile(c.Request().Context(), actor, name)
	if err != nil {
		return err
	}
	defer rc.Close()

	mimeType := ""
	if doc.StorageKey == name {
		mimeType = doc.MimeType
	}
	return c.Stream(http.StatusOK, contentType(mimeType, name), rc)
}

// formUpload opens the multipart file field. A request without the field
// yields an Upload with no content, which the service rejects.
func formUpload(c echo.Context) (ports.Upload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(uploadField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return ports.Upload{Field: uploadField}, noop, nil
	}
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return ports.Upload{}, noop, err
		}
		return ports.Upload{}, noop, errInvalidPayload
	}

	f, err := fh.Open()
	if err != nil {
		return ports.Upload{}, noop, err
	}
	return ports.Upload{
		Field:    uploadField,
		FileName: fh.Filename,
		Size:     fh.Size,
		Content:  f,
	}, closer(f), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

// formRoles accepts repeated fields ("view=hr&view=admin"), the bracket
// form ("view[]") and comma separated values. Absent fields return nil.
func formRoles(c echo.Context, name string) []domain.Role {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	values, ok := form.Value[name]
	if more, found := form.Value[name+"[]"]; found {
		values, ok = append(values, more...), true
	}
	if !ok {
		return nil
	}
	roles := []domain.Role{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				roles = append(roles, domain.Role(part))
			}
		}
	}
	return roles
}

func attachment(fileName string) string {
	if fileName == "" {
		return "attachment"
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": fileName}); v != "" {
		return v
	}
	return "attachment"
}

func contentType(mimeType, fileName string) string {
	if mimeType != "" {
		return mimeType
	}
	if t := mime.TypeByExtension(filepath.Ext(fileName)); t != "" {
		return t
	}
	return echo.MIMEOctetStream
}

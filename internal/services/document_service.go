package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
	"spacos/internal/uuid"
)

// documentService handles the data room. A file's versions are separate
// rows sharing RootID; exactly one of them is the latest.
type documentService struct {
	db *gorm.DB
}

// NewDocumentService creates a new DocumentServicer.
func NewDocumentService(db *gorm.DB) DocumentServicer {
	return &documentService{db: db}
}

// CreateFolder creates a folder.
func (s *documentService) CreateFolder(ac auth.Context, in DocumentInput) (*models.Document, error) {
	return s.create(ac, in, models.DocumentTypeFolder)
}

// CreateFile creates version 1 of a file.
func (s *documentService) CreateFile(ac auth.Context, in DocumentInput) (*models.Document, error) {
	return s.create(ac, in, models.DocumentTypeFile)
}

func (s *documentService) create(ac auth.Context, in DocumentInput, kind models.DocumentType) (*models.Document, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "document name is required")
	}
	if in.FileSize < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "file size must not be negative")
	}

	spacID := in.SPACID
	if in.ParentID != nil && *in.ParentID != "" {
		parent, err := findOwned[models.Document](s.db, ac.OrgID, *in.ParentID, apperrors.ErrDocumentNotFound)
		if err != nil {
			return nil, err
		}
		if parent.Type != models.DocumentTypeFolder {
			return nil, apperrors.ErrNotAFolder
		}
		switch {
		case spacID == nil:
			spacID = parent.SPACID
		case parent.SPACID == nil || *parent.SPACID != *spacID:
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "document and parent folder belong to different SPACs")
		}
	} else {
		in.ParentID = nil
	}
	if err := optionalSPAC(s.db, ac.OrgID, spacID); err != nil {
		return nil, err
	}

	id := uuid.New()
	doc := &models.Document{
		OrganizationID: ac.OrgID,
		SPACID:         spacID,
		ParentID:       in.ParentID,
		RootID:         id,
		Name:           in.Name,
		Type:           kind,
		Status:         models.DocumentStatusDraft,
		Version:        1,
		IsLatest:       true,
		UploadedBy:     ac.UserID,
	}
	doc.ID = id
	if kind == models.DocumentTypeFile {
		doc.MimeType = in.MimeType
		doc.FileSize = in.FileSize
	}
	if err := s.db.Create(doc).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return doc, nil
}

// ListDocuments lists the latest version of everything directly under
// parentID, or at the top level when parentID is nil. Folders come first.
func (s *documentService) ListDocuments(ac auth.Context, spacID, parentID *string) ([]models.Document, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	q := s.db.Where("organization_id = ? AND is_latest = ?", ac.OrgID, true)
	if spacID != nil {
		q = q.Where("spac_id = ?", *spacID)
	}
	if parentID != nil {
		q = q.Where("parent_id = ?", *parentID)
	} else {
		q = q.Where("parent_id IS NULL")
	}

	var docs []models.Document
	// "folder" sorts after "file"
	if err := q.Order("type DESC").Order("name ASC").Find(&docs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range docs {
		if err := checkDocumentVocabulary(&docs[i]); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func checkDocumentVocabulary(doc *models.Document) error {
	if !doc.Type.Valid() || !doc.Status.Valid() {
		return apperrors.WithMessage(apperrors.ErrUnknownEnumValue,
			"document "+doc.ID+" has type "+string(doc.Type)+" and status "+string(doc.Status))
	}
	return nil
}

// GetDocument retrieves one document row.
func (s *documentService) GetDocument(ac auth.Context, id string) (*models.Document, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	doc, err := findOwned[models.Document](s.db, ac.OrgID, id, apperrors.ErrDocumentNotFound)
	if err != nil {
		return nil, err
	}
	if err := checkDocumentVocabulary(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// AddVersion uploads a new version of a file. Only the latest version can
// be superseded; the new row starts again as a draft.
func (s *documentService) AddVersion(ac auth.Context, id string, in VersionInput) (*models.Document, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	if in.FileSize < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "file size must not be negative")
	}

	var next *models.Document
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current models.Document
		if err := forUpdate(tx).Where("id = ? AND organization_id = ?", id, ac.OrgID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrDocumentNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if current.Type != models.DocumentTypeFile {
			return apperrors.ErrFolderVersioning
		}
		if !current.IsLatest {
			return apperrors.ErrNotLatestVersion
		}

		if err := tx.Model(&current).Update("is_latest", false).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = current.Name
		}
		mime := in.MimeType
		if mime == "" {
			mime = current.MimeType
		}
		next = &models.Document{
			OrganizationID: current.OrganizationID,
			SPACID:         current.SPACID,
			ParentID:       current.ParentID,
			RootID:         current.RootID,
			Name:           name,
			Type:           models.DocumentTypeFile,
			Status:         models.DocumentStatusDraft,
			MimeType:       mime,
			FileSize:       in.FileSize,
			Version:        current.Version + 1,
			IsLatest:       true,
			UploadedBy:     ac.UserID,
		}
		if err := tx.Create(next).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, passthrough(err)
	}
	return next, nil
}

// ListVersions returns every version of the document's file, newest first.
func (s *documentService) ListVersions(ac auth.Context, id string) ([]models.Document, error) {
	doc, err := s.GetDocument(ac, id)
	if err != nil {
		return nil, err
	}
	var versions []models.Document
	if err := s.db.Where("organization_id = ? AND root_id = ?", ac.OrgID, doc.RootID).
		Order("version DESC").
		Find(&versions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return versions, nil
}

// UpdateStatus moves the latest version through review.
func (s *documentService) UpdateStatus(ac auth.Context, id string, status models.DocumentStatus) (*models.Document, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown document status "+string(status))
	}
	doc, err := findOwned[models.Document](s.db, ac.OrgID, id, apperrors.ErrDocumentNotFound)
	if err != nil {
		return nil, err
	}
	if !doc.IsLatest {
		return nil, apperrors.ErrNotLatestVersion
	}
	if err := s.db.Model(doc).Update("status", status).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	doc.Status = status
	return doc, nil
}

// DeleteDocument removes a file with all its versions, or an empty folder.
func (s *documentService) DeleteDocument(ac auth.Context, id string) error {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return err
	}
	doc, err := findOwned[models.Document](s.db, ac.OrgID, id, apperrors.ErrDocumentNotFound)
	if err != nil {
		return err
	}
	if doc.Type == models.DocumentTypeFolder {
		var children int64
		if err := s.db.Model(&models.Document{}).Where("parent_id = ?", doc.ID).Count(&children).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if children > 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "folder is not empty")
		}
	}
	if err := s.db.Where("organization_id = ? AND root_id = ?", ac.OrgID, doc.RootID).Delete(&models.Document{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

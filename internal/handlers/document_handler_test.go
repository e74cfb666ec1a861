package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
	"spacos/internal/services"
)

const (
	testFolderID = "0190a0b0-0000-7000-8000-000000000501"
	testFileID   = "0190a0b0-0000-7000-8000-000000000502"
)

type mockDocumentService struct {
	createFolderFn   func(ac auth.Context, in services.DocumentInput) (*models.Document, error)
	createFileFn     func(ac auth.Context, in services.DocumentInput) (*models.Document, error)
	listDocumentsFn  func(ac auth.Context, spacID, parentID *string) ([]models.Document, error)
	getDocumentFn    func(ac auth.Context, id string) (*models.Document, error)
	addVersionFn     func(ac auth.Context, id string, in services.VersionInput) (*models.Document, error)
	listVersionsFn   func(ac auth.Context, id string) ([]models.Document, error)
	updateStatusFn   func(ac auth.Context, id string, status models.DocumentStatus) (*models.Document, error)
	deleteDocumentFn func(ac auth.Context, id string) error
}

var _ services.DocumentServicer = (*mockDocumentService)(nil)

func (m *mockDocumentService) CreateFolder(ac auth.Context, in services.DocumentInput) (*models.Document, error) {
	if m.createFolderFn != nil {
		return m.createFolderFn(ac, in)
	}
	return &models.Document{Base: models.Base{ID: testFolderID}, Name: in.Name, Type: models.DocumentTypeFolder}, nil
}

func (m *mockDocumentService) CreateFile(ac auth.Context, in services.DocumentInput) (*models.Document, error) {
	if m.createFileFn != nil {
		return m.createFileFn(ac, in)
	}
	return &models.Document{Base: models.Base{ID: testFileID}, Name: in.Name, Type: models.DocumentTypeFile, Version: 1}, nil
}

func (m *mockDocumentService) ListDocuments(ac auth.Context, spacID, parentID *string) ([]models.Document, error) {
	if m.listDocumentsFn != nil {
		return m.listDocumentsFn(ac, spacID, parentID)
	}
	return []models.Document{}, nil
}

func (m *mockDocumentService) GetDocument(ac auth.Context, id string) (*models.Document, error) {
	if m.getDocumentFn != nil {
		return m.getDocumentFn(ac, id)
	}
	return &models.Document{Base: models.Base{ID: id}}, nil
}

func (m *mockDocumentService) AddVersion(ac auth.Context, id string, in services.VersionInput) (*models.Document, error) {
	if m.addVersionFn != nil {
		return m.addVersionFn(ac, id, in)
	}
	return &models.Document{Base: models.Base{ID: "new-version"}, Version: 2}, nil
}

func (m *mockDocumentService) ListVersions(ac auth.Context, id string) ([]models.Document, error) {
	if m.listVersionsFn != nil {
		return m.listVersionsFn(ac, id)
	}
	return []models.Document{}, nil
}

func (m *mockDocumentService) UpdateStatus(ac auth.Context, id string, status models.DocumentStatus) (*models.Document, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ac, id, status)
	}
	return &models.Document{Base: models.Base{ID: id}, Status: status}, nil
}

func (m *mockDocumentService) DeleteDocument(ac auth.Context, id string) error {
	if m.deleteDocumentFn != nil {
		return m.deleteDocumentFn(ac, id)
	}
	return nil
}

func setupDocumentRouter(svc services.DocumentServicer) *gin.Engine {
	h := NewDocumentHandler(svc, &mockAuditService{})
	r := gin.New()
	g := r.Group("", injectAuth(analyst()))
	g.POST("/documents/folders", h.CreateFolder)
	g.POST("/documents/files", h.CreateFile)
	g.GET("/documents", h.ListDocuments)
	g.GET("/documents/:id", h.GetDocument)
	g.DELETE("/documents/:id", h.DeleteDocument)
	g.POST("/documents/:id/versions", h.AddVersion)
	g.GET("/documents/:id/versions", h.ListVersions)
	g.POST("/documents/:id/status", h.UpdateStatus)
	return r
}

func TestDocumentHandler_CreateFolder(t *testing.T) {
	t.Run("returns 201", func(t *testing.T) {
		r := setupDocumentRouter(&mockDocumentService{})

		rec := doRequest(r, "POST", "/documents/folders", `{"spac_id":"`+testSPACID+`","name":"Legal"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		doc := parseJSON(t, rec)["document"].(map[string]interface{})
		if doc["type"] != "folder" {
			t.Errorf("expected folder, got %v", doc["type"])
		}
	})

	t.Run("maps parent that is not a folder", func(t *testing.T) {
		svc := &mockDocumentService{
			createFolderFn: func(_ auth.Context, _ services.DocumentInput) (*models.Document, error) {
				return nil, apperrors.ErrNotAFolder
			},
		}
		r := setupDocumentRouter(svc)

		rec := doRequest(r, "POST", "/documents/folders", `{"parent_id":"`+testFileID+`","name":"Sub"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NOT_A_FOLDER")
	})
}

func TestDocumentHandler_CreateFile(t *testing.T) {
	t.Run("rejects negative size", func(t *testing.T) {
		r := setupDocumentRouter(&mockDocumentService{})

		rec := doRequest(r, "POST", "/documents/files", `{"name":"nda.pdf","file_size":-1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("passes metadata", func(t *testing.T) {
		var got services.DocumentInput
		svc := &mockDocumentService{
			createFileFn: func(_ auth.Context, in services.DocumentInput) (*models.Document, error) {
				got = in
				return &models.Document{Base: models.Base{ID: testFileID}, Name: in.Name, Version: 1}, nil
			},
		}
		r := setupDocumentRouter(svc)

		rec := doRequest(r, "POST", "/documents/files",
			`{"parent_id":"`+testFolderID+`","name":"nda.pdf","mime_type":"application/pdf","file_size":2048}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.ParentID == nil || *got.ParentID != testFolderID || got.FileSize != 2048 {
			t.Errorf("unexpected input %+v", got)
		}
	})
}

func TestDocumentHandler_ListDocuments(t *testing.T) {
	var gotSPAC, gotParent *string
	svc := &mockDocumentService{
		listDocumentsFn: func(_ auth.Context, spacID, parentID *string) ([]models.Document, error) {
			gotSPAC, gotParent = spacID, parentID
			return []models.Document{{Name: "Legal"}}, nil
		},
	}
	r := setupDocumentRouter(svc)

	rec := doRequest(r, "GET", "/documents?spac_id="+testSPACID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotSPAC == nil || *gotSPAC != testSPACID {
		t.Errorf("expected spac filter, got %v", gotSPAC)
	}
	if gotParent != nil {
		t.Errorf("expected root listing, got parent %v", *gotParent)
	}
	if docs := parseJSON(t, rec)["documents"].([]interface{}); len(docs) != 1 {
		t.Errorf("expected 1 document, got %d", len(docs))
	}
}

func TestDocumentHandler_AddVersion(t *testing.T) {
	t.Run("returns 201 with next version", func(t *testing.T) {
		r := setupDocumentRouter(&mockDocumentService{})

		rec := doRequest(r, "POST", "/documents/"+testFileID+"/versions", `{"file_size":4096}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		doc := parseJSON(t, rec)["document"].(map[string]interface{})
		if doc["version"].(float64) != 2 {
			t.Errorf("expected version 2, got %v", doc["version"])
		}
	})

	t.Run("maps stale version", func(t *testing.T) {
		svc := &mockDocumentService{
			addVersionFn: func(_ auth.Context, _ string, _ services.VersionInput) (*models.Document, error) {
				return nil, apperrors.ErrNotLatestVersion
			},
		}
		r := setupDocumentRouter(svc)

		rec := doRequest(r, "POST", "/documents/"+testFileID+"/versions", `{}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestDocumentHandler_UpdateStatus(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		r := setupDocumentRouter(&mockDocumentService{})

		rec := doRequest(r, "POST", "/documents/"+testFileID+"/status", `{"status":"UNDER_REVIEW"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		r := setupDocumentRouter(&mockDocumentService{})

		rec := doRequest(r, "POST", "/documents/"+testFileID+"/status", `{"status":"SHREDDED"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNKNOWN_ENUM_VALUE")
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spacos/internal/models"
	"spacos/internal/services"
)

// DocumentHandler handles data room requests.
type DocumentHandler struct {
	documentService services.DocumentServicer
	auditService    services.AuditServicer
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService services.DocumentServicer, auditService services.AuditServicer) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, auditService: auditService}
}

// CreateFolderRequest represents the request payload for creating a folder
type CreateFolderRequest struct {
	SPACID   *string `json:"spac_id" binding:"omitempty,uuid"`
	ParentID *string `json:"parent_id" binding:"omitempty,uuid"`
	Name     string  `json:"name" binding:"required,min=1,max=255"`
}

// CreateFileRequest represents the request payload for registering a file
type CreateFileRequest struct {
	SPACID   *string `json:"spac_id" binding:"omitempty,uuid"`
	ParentID *string `json:"parent_id" binding:"omitempty,uuid"`
	Name     string  `json:"name" binding:"required,min=1,max=255"`
	MimeType string  `json:"mime_type" binding:"max=255"`
	FileSize int64   `json:"file_size" binding:"gte=0"`
}

// AddVersionRequest represents the request payload for a new file version
type AddVersionRequest struct {
	Name     string `json:"name" binding:"max=255"`
	MimeType string `json:"mime_type" binding:"max=255"`
	FileSize int64  `json:"file_size" binding:"gte=0"`
}

// UpdateDocumentStatusRequest represents the request payload for a review status change
type UpdateDocumentStatusRequest struct {
	Status models.DocumentStatus `json:"status" binding:"required,document_status"`
}

// CreateFolder handles the creation of a data room folder
// @Summary     Create a folder
// @Tags        documents
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateFolderRequest true "Folder details"
// @Success     201 {object} models.Document "Folder created"
// @Failure     400 {object} ErrorResponse "Invalid input or parent is not a folder"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /documents/folders [post]
func (h *DocumentHandler) CreateFolder(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	doc, err := h.documentService.CreateFolder(ac, services.DocumentInput{
		SPACID:   req.SPACID,
		ParentID: req.ParentID,
		Name:     req.Name,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "CREATE_FOLDER", "document", doc.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// CreateFile handles registering a data room file
// @Summary     Create a file
// @Description Register file metadata in the data room. The first version is number 1.
// @Tags        documents
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateFileRequest true "File details"
// @Success     201 {object} models.Document "File created"
// @Failure     400 {object} ErrorResponse "Invalid input or parent is not a folder"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /documents/files [post]
func (h *DocumentHandler) CreateFile(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	doc, err := h.documentService.CreateFile(ac, services.DocumentInput{
		SPACID:   req.SPACID,
		ParentID: req.ParentID,
		Name:     req.Name,
		MimeType: req.MimeType,
		FileSize: req.FileSize,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "CREATE_FILE", "document", doc.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "size": req.FileSize})

	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// ListDocuments handles listing one level of the data room
// @Summary     List documents
// @Description List the latest versions under a parent folder, folders first
// @Tags        documents
// @Produce     json
// @Security    BearerAuth
// @Param       spac_id   query string false "SPAC ID"
// @Param       parent_id query string false "Parent folder ID (root when omitted)"
// @Success     200 {array}  models.Document "Documents"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	docs, err := h.documentService.ListDocuments(ac, optionalQuery(c, "spac_id"), optionalQuery(c, "parent_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// GetDocument handles the retrieval of one document
// @Summary     Get document by ID
// @Tags        documents
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Document ID"
// @Success     200 {object} models.Document "Document"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Document not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	doc, err := h.documentService.GetDocument(ac, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// AddVersion handles uploading a new version of a file
// @Summary     Add document version
// @Description Supersede the latest version of a file with a new one
// @Tags        documents
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Document ID"
// @Param       request body AddVersionRequest true "Version details"
// @Success     201 {object} models.Document "New version"
// @Failure     400 {object} ErrorResponse "Folders are not versioned"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Document not found"
// @Failure     409 {object} ErrorResponse "Not the latest version"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /documents/{id}/versions [post]
func (h *DocumentHandler) AddVersion(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	id := c.Param("id")
	doc, err := h.documentService.AddVersion(ac, id, services.VersionInput{
		Name:     req.Name,
		MimeType: req.MimeType,
		FileSize: req.FileSize,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "ADD_VERSION", "document", doc.ID, c.ClientIP(),
		map[string]interface{}{"previous_id": id, "version": doc.Version})

	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// ListVersions handles listing every version of a file
// @Summary     List document versions
// @Tags        documents
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Document ID"
// @Success     200 {array}  models.Document "Versions, newest first"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Document not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /documents/{id}/versions [get]
func (h *DocumentHandler) ListVersions(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	versions, err := h.documentService.ListVersions(ac, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

// UpdateStatus handles a review status change
// @Summary     Change document status
// @Tags        documents
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                      true "Document ID"
// @Param       request body UpdateDocumentStatusRequest true "New status"
// @Success     200 {object} models.Document "Updated document"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Document not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /documents/{id}/status [post]
func (h *DocumentHandler) UpdateStatus(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateDocumentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	id := c.Param("id")
	doc, err := h.documentService.UpdateStatus(ac, id, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "UPDATE_DOCUMENT_STATUS", "document", id, c.ClientIP(),
		map[string]interface{}{"status": req.Status})

	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// DeleteDocument handles deleting a document
// @Summary     Delete document
// @Tags        documents
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Document ID"
// @Success     200 {object} map[string]string "Document deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Document not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.documentService.DeleteDocument(ac, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "DELETE_DOCUMENT", "document", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}

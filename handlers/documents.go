package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/syncboard/syncboard/internal/config"
	"github.com/syncboard/syncboard/internal/document"
	docservice "github.com/syncboard/syncboard/internal/document/service"
	"github.com/syncboard/syncboard/pkg/logger"
	"github.com/syncboard/syncboard/pkg/middleware"
)

// DocumentsHandler exposes the document CRUD, versioning and collaborator
// endpoints. All routes require a verified access token.
type DocumentsHandler struct {
	cfg *config.Config
	svc *docservice.Service
}

func NewDocumentsHandler(cfg *config.Config, svc *docservice.Service) *DocumentsHandler {
	return &DocumentsHandler{cfg: cfg, svc: svc}
}

// Register routes under /documents
func (h *DocumentsHandler) Register(rg *gin.RouterGroup) {
	d := rg.Group("/documents")
	d.GET("", h.List)
	d.POST("", h.Create)
	d.GET("/:id", h.Get)
	d.PUT("/:id", h.Update)
	d.DELETE("/:id", h.Delete)
	d.GET("/:id/versions", h.Versions)
	d.POST("/:id/collaborators", h.AddCollaborator)
}

// List returns every document the caller owns or collaborates on
func (h *DocumentsHandler) List(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	docs, err := h.svc.List(c.Request.Context(), claims.UserID)
	if err != nil {
		h.serverError(c, "Failed to fetch documents", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// Create inserts a new document owned by the caller
func (h *DocumentsHandler) Create(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Emoji   string `json:"emoji"`
	}
	// an empty body is fine; every field has a default
	_ = c.ShouldBindJSON(&req)

	doc, err := h.svc.Create(c.Request.Context(), claims.UserID, req.Title, req.Content, req.Emoji)
	if err != nil {
		h.serverError(c, "Failed to create document", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// Get returns a single populated document
func (h *DocumentsHandler) Get(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		h.mapServiceError(c, err, "Failed to fetch")
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// Update applies a partial update to a document
func (h *DocumentsHandler) Update(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	var patch document.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	editor := docservice.Identity{ID: claims.UserID, Name: claims.Name}
	doc, err := h.svc.Update(c.Request.Context(), c.Param("id"), editor, patch)
	if err != nil {
		h.mapServiceError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// Delete removes a document and its version history (owner only)
func (h *DocumentsHandler) Delete(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		h.mapServiceError(c, err, "Failed to delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

// Versions lists the snapshot history of a document, newest first
func (h *DocumentsHandler) Versions(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	versions, err := h.svc.Versions(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		h.mapServiceError(c, err, "Failed to fetch versions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

// AddCollaborator grants write access to another account by email (owner only)
func (h *DocumentsHandler) AddCollaborator(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}
	collaborators, err := h.svc.AddCollaborator(c.Request.Context(), c.Param("id"), claims.UserID, req.Email)
	if err != nil {
		h.mapServiceError(c, err, "Failed to add collaborator")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Collaborator added",
		"collaborators": collaborators,
	})
}

// mapServiceError translates the document service sentinels to HTTP statuses.
func (h *DocumentsHandler) mapServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, docservice.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, docservice.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, docservice.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.serverError(c, fallback, err)
	}
}

func (h *DocumentsHandler) serverError(c *gin.Context, msg string, err error) {
	logger.Errorf("%s: %v", msg, err)
	body := gin.H{"error": msg}
	if !h.cfg.Server.IsProduction() {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Jostyn07/Asesoriasth-backend/pkg/logger"
	"github.com/Jostyn07/Asesoriasth-backend/service"
	"github.com/gin-gonic/gin"
)

// FileStorage is the object-storage boundary used by the upload endpoints.
type FileStorage interface {
	UploadFiles(ctx context.Context, files []service.UploadFile, folder string) ([]service.FileLink, error)
	CreateFolder(ctx context.Context, name string) (folderID, folderLink string, err error)
}

type UploadHandler struct {
	storage FileStorage
}

func NewUploadHandler(storage FileStorage) *UploadHandler {
	return &UploadHandler{storage: storage}
}

// UploadFiles takes multipart files[] plus the client identity fields used
// to name the stored objects. A partial batch is a failed batch: the
// response reports what landed, but success is false.
func (h *UploadHandler) UploadFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	nombre := c.PostForm("nombre")
	apellidos := c.PostForm("apellidos")
	clientID := c.PostForm("clientId")

	files := make([]service.UploadFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file " + fh.Filename})
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file " + fh.Filename})
			return
		}

		files = append(files, service.UploadFile{
			Name:     uploadName(nombre, apellidos, clientID, fh.Filename),
			MimeType: fh.Header.Get("Content-Type"),
			Content:  content,
		})
	}

	folder := clientID
	if folder == "" {
		folder = "sin-cliente"
	}

	links, err := h.storage.UploadFiles(c.Request.Context(), files, folder)
	if err != nil {
		var uploadErr *service.UploadError
		if errors.As(err, &uploadErr) {
			logger.Error(c.Request.Context(), "file upload batch failed",
				"failed_file", uploadErr.FailedFile,
				"uploaded", uploadErr.Uploaded,
				"client_id", clientID,
				"error", err,
			)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":      "File upload failed",
				"failedFile": uploadErr.FailedFile,
				"uploaded":   uploadErr.Uploaded,
				"fileLinks":  uploadErr.Links,
			})
			return
		}

		logger.Error(c.Request.Context(), "file upload failed", "client_id", clientID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "File upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"fileLinks": links,
	})
}

// CreateFolder provisions a storage folder for one client's documents.
func (h *UploadHandler) CreateFolder(c *gin.Context) {
	var req struct {
		FolderName string `json:"folderName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folderName is required"})
		return
	}

	folderID, folderLink, err := h.storage.CreateFolder(c.Request.Context(), req.FolderName)
	if err != nil {
		logger.Error(c.Request.Context(), "folder creation failed", "folder", req.FolderName, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create folder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"folderId":   folderID,
		"folderLink": folderLink,
	})
}

// uploadName builds the stored file name the way the intake flow has
// always named documents: person, client id, original name.
func uploadName(nombre, apellidos, clientID, filename string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{nombre, apellidos, clientID} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return filename
	}
	return fmt.Sprintf("%s-%s", strings.Join(parts, "-"), filename)
}

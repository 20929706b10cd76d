// internal/api/handlers/upload_handler.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"waste-docket-api-server/internal/api/middleware"
	"waste-docket-api-server/internal/resolvers"

	"github.com/gin-gonic/gin"
)

// MaxUploadSize bounds a single multipart file.
const MaxUploadSize = 20 << 20

// UploadHandler maps multipart routes onto the operations that take file bytes.
type UploadHandler struct {
	Ops Operations
}

func (h *UploadHandler) ImportCustomers(c *gin.Context) {
	file, _, err := readFormFile(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	const op = "importCustomersFromCsv"
	out, known := h.Ops.Invoke(c.Request.Context(), op, middleware.CredentialsFrom(c), resolvers.ImportCustomersInput{
		FleetID: c.Param("fleetId"),
		File:    file,
	})
	respond(c, op, out, known)
}

func (h *UploadHandler) UploadPermit(c *gin.Context) {
	file, header, err := readFormFile(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	fileName := c.PostForm("fileName")
	if fileName == "" {
		fileName = header.Filename
	}
	contentType := c.PostForm("contentType")
	if contentType == "" {
		contentType = header.Header.Get("Content-Type")
	}

	const op = "uploadPermitDocument"
	out, known := h.Ops.Invoke(c.Request.Context(), op, middleware.CredentialsFrom(c), resolvers.UploadPermitInput{
		FleetID:      c.Param("fleetId"),
		PermitNumber: c.PostForm("permitNumber"),
		PermitHolder: c.PostForm("permitHolder"),
		ExpiryDate:   c.PostForm("expiryDate"),
		FileName:     fileName,
		ContentType:  contentType,
		File:         file,
	})
	respond(c, op, out, known)
}

func readFormFile(c *gin.Context) ([]byte, *multipart.FileHeader, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("file is required")
	}
	if header.Size > MaxUploadSize {
		return nil, nil, fmt.Errorf("file exceeds %d bytes", MaxUploadSize)
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	return data, header, nil
}

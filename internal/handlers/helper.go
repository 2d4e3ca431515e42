package handlers

import (
	"encoding/json"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/SAP-F-2025/form-builder-service/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	// Gin requires one wildcard name per path segment, so nested routes
	// reuse :id for the form.
	formIDParam     = "id"
	responseIDParam = "responseId"

	formDataField       = "formData"
	createdByField      = "createdBy"
	headerImageField    = "headerImage"
	questionImagesField = "questionImages"

	maxMultipartMemory = 10 << 20
)

// parseIntQuery reads an integer query parameter, falling back to
// defaultValue when it is absent or malformed.
func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := strings.TrimSpace(c.Query(param))
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// readFormPayload accepts either a multipart body with the form JSON in the
// formData field, or the form JSON as the raw request body.
func readFormPayload(c *gin.Context) (*services.FormPayload, error) {
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, err
		}
		payload := &services.FormPayload{
			Data:      json.RawMessage(c.PostForm(formDataField)),
			CreatedBy: c.PostForm(createdByField),
		}
		if form := c.Request.MultipartForm; form != nil {
			if files := form.File[headerImageField]; len(files) > 0 {
				image := imageMetadata(files[0])
				payload.HeaderImage = &image
			}
			for _, file := range form.File[questionImagesField] {
				payload.QuestionImages = append(payload.QuestionImages, imageMetadata(file))
			}
		}
		return payload, nil
	}

	if c.ContentType() == gin.MIMEPOSTForm {
		return &services.FormPayload{
			Data:      json.RawMessage(c.PostForm(formDataField)),
			CreatedBy: c.PostForm(createdByField),
		}, nil
	}

	body, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	return &services.FormPayload{
		Data:      body,
		CreatedBy: c.Query(createdByField),
	}, nil
}

// imageMetadata records what was uploaded. File contents are not stored.
func imageMetadata(file *multipart.FileHeader) models.Image {
	return models.Image{
		Filename: file.Filename,
		Mimetype: file.Header.Get("Content-Type"),
	}
}

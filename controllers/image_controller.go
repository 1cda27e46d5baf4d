package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/ecoreport/api-go/services"
	"github.com/ecoreport/api-go/storage"
	"github.com/ecoreport/api-go/utils"
	"github.com/gin-gonic/gin"
)

type ImageController struct {
	Images *services.ImageService
}

func NewImageController(images *services.ImageService) *ImageController {
	return &ImageController{Images: images}
}

// UploadImage accepts one multipart file in the "image" field.
func (ic *ImageController) UploadImage(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}
	reportID, ok := utils.ParamID(c, "id")
	if !ok {
		respondBadID(c, "report")
		return
	}

	if limit := ic.Images.MaxRequestBytes(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	file, err := uploadedFile(c, "image")
	if err != nil {
		respondError(c, err)
		return
	}

	image, err := ic.Images.Upload(c.Request.Context(), identity, reportID, file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, image)
}

// uploadedFile returns the file part named field. It returns nil when the
// request has no such part, and an empty header when the part was sent with
// an empty filename, which the multipart reader files under form values.
// Missing parts are reported by the service after the report checks.
func uploadedFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	file, err := c.FormFile(field)
	if err == nil {
		return file, nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, services.ErrFileTooLarge
	}

	if form := c.Request.MultipartForm; form != nil {
		if _, sent := form.Value[field]; sent {
			return &multipart.FileHeader{}, nil
		}
	}
	return nil, nil
}

func (ic *ImageController) GetImage(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}
	imageID, ok := utils.ParamID(c, "id")
	if !ok {
		respondBadID(c, "image")
		return
	}

	image, rc, err := ic.Images.Open(c.Request.Context(), identity, imageID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, storage.ContentType(image.Filename), rc, nil)
}

func (ic *ImageController) DeleteImage(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}
	imageID, ok := utils.ParamID(c, "id")
	if !ok {
		respondBadID(c, "image")
		return
	}

	if err := ic.Images.Delete(c.Request.Context(), identity, imageID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Image deleted successfully"})
}

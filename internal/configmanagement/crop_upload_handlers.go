package configmanagement

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"crop-asr-qa-platform/backend/internal/datastore"
	"crop-asr-qa-platform/backend/internal/vocabulary"

	"github.com/gin-gonic/gin"
)

const maxCSVUploadSize = 10 << 20 // 10 MB

// UploadCropsHandler ingests a crop vocabulary CSV. Rows are normalized by the
// vocabulary package and replace any existing rows for the same
// (project, language, serial) keys.
func UploadCropsHandler(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxCSVUploadSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse multipart form: %v. Max size: %d MB", err, maxCSVUploadSize>>20)})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to get file: %v", err)})
		}
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to open uploaded file: %v", err)})
		return
	}
	defer file.Close()

	entries, err := vocabulary.ParseCropCSV(file)
	if err != nil {
		var malformed *vocabulary.MalformedInputError
		if errors.As(err, &malformed) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":           "Malformed crop CSV: " + malformed.Reason,
				"missing_columns": malformed.MissingColumns,
				"found_headers":   malformed.FoundHeaders,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse crop CSV: " + err.Error()})
		return
	}

	crops := make([]*datastore.Crop, 0, len(entries))
	for _, e := range entries {
		crops = append(crops, &datastore.Crop{
			Project:  e.Project,
			Language: e.Language,
			Serial:   e.Serial,
			CropCode: e.Code,
			CropName: e.Name,
		})
	}

	imported, err := datastore.ReplaceCrops(crops)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store crops: " + err.Error()})
		return
	}
	log.Printf("Imported %d crops from '%s'", imported, fileHeader.Filename)

	languageCounts := make(map[string]int)
	for _, crop := range crops {
		languageCounts[crop.Language]++
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Crops imported successfully",
		"imported":        imported,
		"language_counts": languageCounts,
	})
}

// ListCropsHandler returns stored crops, optionally filtered by project and language.
func ListCropsHandler(c *gin.Context) {
	project := c.Query("project")
	language := c.Query("language")

	crops, err := datastore.ListCrops(project, language)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list crops: " + err.Error()})
		return
	}

	if crops == nil {
		crops = []*datastore.Crop{}
	}

	c.JSON(http.StatusOK, crops)
}

// CropLanguageCountsHandler reports how many crops each language has for a project.
// The web client uses this to populate its language picker.
func CropLanguageCountsHandler(c *gin.Context) {
	project := c.Query("project")

	counts, err := datastore.CountCropsByLanguage(project)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count crops: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, counts)
}

package configmanagement

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"crop-asr-qa-platform/backend/internal/datastore"

	"github.com/gin-gonic/gin"
)

// CreateProviderConfigHandler handles the creation of a new ASR provider configuration.
func CreateProviderConfigHandler(c *gin.Context) {
	var pc datastore.ProviderConfig
	if err := c.ShouldBindJSON(&pc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if pc.Name == "" || pc.APIType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and API Type are required fields"})
		return
	}

	if len(pc.OtherConfigs) > 0 {
		if !json.Valid(pc.OtherConfigs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "other_configs is not valid JSON"})
			return
		}
	} else {
		pc.OtherConfigs = json.RawMessage("null")
	}

	id, err := datastore.CreateProviderConfig(&pc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create provider config: " + err.Error()})
		return
	}

	pc.ID = id
	c.JSON(http.StatusCreated, pc)
}

// GetProviderConfigHandler retrieves a specific provider configuration by its ID.
func GetProviderConfigHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider config ID format"})
		return
	}

	pc, err := datastore.GetProviderConfig(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve provider config: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, pc)
}

// UpdateProviderConfigHandler updates an existing provider configuration.
func UpdateProviderConfigHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider config ID format"})
		return
	}

	var pc datastore.ProviderConfig
	if err := c.ShouldBindJSON(&pc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if pc.Name == "" || pc.APIType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and API Type are required fields"})
		return
	}

	if len(pc.OtherConfigs) > 0 {
		if !json.Valid(pc.OtherConfigs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "other_configs is not valid JSON"})
			return
		}
	} else {
		pc.OtherConfigs = json.RawMessage("null")
	}

	updated, err := datastore.UpdateProviderConfig(id, &pc)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update provider config: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteProviderConfigHandler deletes a provider configuration by its ID.
func DeleteProviderConfigHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider config ID format"})
		return
	}

	if err := datastore.DeleteProviderConfig(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete provider config: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Provider config deleted successfully"})
}

// ListProviderConfigsHandler lists all configured ASR providers.
func ListProviderConfigsHandler(c *gin.Context) {
	pcs, err := datastore.ListProviderConfigs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list provider configs: " + err.Error()})
		return
	}

	if pcs == nil {
		pcs = []*datastore.ProviderConfig{} // Return empty array instead of null
	}

	c.JSON(http.StatusOK, pcs)
}

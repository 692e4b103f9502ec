package v1

import (
	"net/http"
	"time"

	"orderform-backend/internal/domain"
	"orderform-backend/internal/form"
	"orderform-backend/pkg/cache"
	"orderform-backend/pkg/utils"
)

type ConfigHandler struct {
	cache   cache.CacheService
	product string
}

func NewConfigHandler(cache cache.CacheService, product string) *ConfigHandler {
	return &ConfigHandler{cache: cache, product: product}
}

// GET /api/v1/config/form
func (h *ConfigHandler) GetFormConfig(w http.ResponseWriter, r *http.Request) {
	// Cache Key
	cacheKey := "system:config:form"

	// Check Cache
	if val, found := h.cache.Get(cacheKey); found {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		utils.WriteJSON(w, http.StatusOK, val)
		return
	}

	response := map[string]interface{}{
		"product":          h.product,
		"submitLabel":      domain.LabelPlaceOrder,
		"submittingLabel":  domain.LabelSubmitting,
		"mobilePattern":    form.MobilePattern,
		"mobileDigits":     domain.MobileDigits,
		"minNameLength":    domain.MinNameLength,
		"minAddressLength": domain.MinAddressLength,
		"colors": map[string]string{
			"valid":   domain.BorderColorValid,
			"invalid": domain.BorderColorInvalid,
		},
		"submissionStates": domain.SubmissionStates,
	}

	h.cache.Set(cacheKey, response, 1*time.Hour)

	w.Header().Set("Cache-Control", "public, max-age=3600")
	utils.WriteJSON(w, http.StatusOK, response)
}

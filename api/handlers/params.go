package handlers

import (
	"net/http"
	"strconv"

	"github.com/linesmerrill/lost-found-api/models"
)

// pageFromQuery reads ?page= and ?limit=, bad values fall back to the defaults
func pageFromQuery(r *http.Request) models.Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return models.NewPage(page, limit)
}

// boolQuery returns nil when key is absent
func boolQuery(r *http.Request, key string) (*bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, models.Validationf("%s must be true or false", key)
	}
	return &v, nil
}

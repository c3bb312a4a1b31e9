package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

// Query layouts shared with the slotdate and month body tags.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// QueryDate reads an optional YYYY-MM-DD parameter. Empty returns "".
func QueryDate(r *http.Request, key string) (string, error) {
	return queryLayout(r, key, DateLayout)
}

// QueryMonth reads an optional YYYY-MM parameter. Empty returns "".
func QueryMonth(r *http.Request, key string) (string, error) {
	return queryLayout(r, key, MonthLayout)
}

// RequireQuery runs parse and rejects an empty result.
func RequireQuery(r *http.Request, key string, parse func(*http.Request, string) (string, error)) (string, error) {
	value, err := parse(r, key)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, key+" is required").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// QueryFlag is true only for an explicit "true" or "1".
func QueryFlag(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "true", "1":
		return true
	}
	return false
}

func queryLayout(r *http.Request, key, layout string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", nil
	}
	parsed, err := time.Parse(layout, raw)
	if err != nil || parsed.Format(layout) != raw {
		return "", pkgerrors.New(pkgerrors.CodeValidation, key+" must look like "+layout).WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}

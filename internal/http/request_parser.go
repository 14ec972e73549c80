// Package http provides the REST API server and its handlers.
//
// This file implements parsing of request bodies and query parameters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// errBadJSON marks bodies that are not a single valid JSON object.
var errBadJSON = errors.New("invalid JSON body")

// decodeJSON reads a single JSON value into dst. Amount fields that fail
// their own decoding surface as validation errors, not malformed JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, core.ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errBadJSON)
	}
	return nil
}

// ParseFilter builds an expense filter from startDate, endDate, category,
// paymentMethod and search query parameters.
func ParseFilter(query url.Values) (core.Filter, error) {
	return core.NewFilter(
		query.Get("startDate"),
		query.Get("endDate"),
		sanitizeInput(query.Get("category")),
		sanitizeInput(query.Get("paymentMethod")),
		sanitizeInput(query.Get("search")),
	)
}

// ParsePeriod reads year and month, each defaulting to def's value when absent.
func ParsePeriod(query url.Values, def core.Period) (core.Period, error) {
	year, month := def.Year, int(def.Month)
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("%w: year %q", core.ErrInvalidPeriod, v)
		}
		year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("%w: month %q", core.ErrInvalidPeriod, v)
		}
		month = m
	}
	return core.NewPeriod(year, month)
}

// ParseTop reads the optional top parameter. Zero means the server default.
func ParseTop(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("top"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: top must be a positive integer", core.ErrValidation)
	}
	return n, nil
}

package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/Bernah2o/legalmatrix/internal/core"
)

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"present", "page=3", 3},
		{"absent", "", 7},
		{"garbage", "page=abc", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/imports?"+tt.query, nil)
			if got := parseIntParam(r, "page", 7); got != tt.want {
				t.Errorf("parseIntParam = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("wrap: %w", pgx.ErrNoRows), http.StatusNotFound},
		{"invalid input", fmt.Errorf("%w: estado", core.ErrInvalidInput), http.StatusBadRequest},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorStatus(tt.err); got != tt.want {
				t.Errorf("errorStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

package httputil

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/spacecol/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Nil", nil, http.StatusOK},
		{"Config", errors.New(errors.ErrCodeConfiguration, "bad"), http.StatusBadRequest},
		{"WrappedSource", fmt.Errorf("invalid options: %w", errors.New(errors.ErrCodeInvalidSource, "x")), http.StatusBadRequest},
		{"Geometry", errors.New(errors.ErrCodeInvalidGeometry, "open mesh"), http.StatusUnprocessableEntity},
		{"NotFound", errors.New(errors.ErrCodeNotFound, "run"), http.StatusNotFound},
		{"Unavailable", errors.New(errors.ErrCodeResourceUnavailable, "mask"), http.StatusServiceUnavailable},
		{"Deadline", fmt.Errorf("grow: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"Plain", stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	status := WriteError(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", "gif"))
	if status != http.StatusBadRequest || w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d/%d", status, w.Code)
	}
	var body ErrorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "INVALID_FORMAT" || body.Error != `unsupported format "gif"` {
		t.Errorf("body = %+v", body)
	}

	w = httptest.NewRecorder()
	WriteError(w, stderrors.New("dial tcp 10.0.0.1: secret detail"))
	if strings.Contains(w.Body.String(), "secret") {
		t.Errorf("internal error leaked: %s", w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Seed int `json:"seed"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"Valid", `{"seed": 3}`, false},
		{"UnknownField", `{"sed": 3}`, true},
		{"Trailing", `{"seed": 3} {"seed": 4}`, true},
		{"Malformed", `{"seed":`, true},
		{"TooLarge", `{"seed": 3, "pad": "` + strings.Repeat("x", MaxBodyBytes) + `"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(httptest.NewRecorder(), r, &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
			if err == nil && p.Seed != 3 {
				t.Errorf("seed = %d", p.Seed)
			}
		})
	}
}

package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
	"github.com/angelmondragon/hangout-backend/pkg/types"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) types.Envelope {
	t.Helper()
	var body types.Envelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return body
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, "", map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}

	body := decodeEnvelope(t, w)
	if body.Status != http.StatusOK || body.Message != "Success" {
		t.Fatalf("unexpected envelope header %+v", body)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteSuccessStatusMirrorsStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, "created", nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body.Status != http.StatusCreated || body.Message != "created" || body.Data != nil {
		t.Fatalf("unexpected envelope %+v", body)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	body := decodeEnvelope(t, w)
	if body.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Code)
	}
	if body.Status != http.StatusBadRequest || body.Message != "bad input" {
		t.Fatalf("unexpected envelope %+v", body)
	}
	if body.Details == nil {
		t.Fatalf("expected details in public payload")
	}
}

func TestWriteErrorAlreadyReported(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeAlreadyReported, "voucher already received"))

	if w.Code != http.StatusAlreadyReported {
		t.Fatalf("expected 208, got %d", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body.Message != "voucher already received" || body.Status != http.StatusAlreadyReported {
		t.Fatalf("unexpected envelope %+v", body)
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	body := decodeEnvelope(t, w)
	if body.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Code)
	}
	if strings.Contains(body.Message, "boom") {
		t.Fatalf("internal error text leaked: %q", body.Message)
	}
	if body.Details != nil {
		t.Fatalf("details should be omitted for internal errors")
	}
}

func TestWriteErrorHidesDependencyMessage(t *testing.T) {
	w := httptest.NewRecorder()
	cause := fmt.Errorf("dial tcp 10.0.0.3:5432: connection refused")
	WriteError(context.Background(), nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "load voucher"))

	body := decodeEnvelope(t, w)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if strings.Contains(body.Message, "10.0.0.3") || body.Message == "load voucher" {
		t.Fatalf("dependency details leaked: %q", body.Message)
	}
}

func TestWriteErrorLogsChain(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	w := httptest.NewRecorder()
	WriteError(context.Background(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("root cause"), "wrapped"))

	if !strings.Contains(buf.String(), "root cause") {
		t.Fatalf("expected error chain in log output, got %s", buf.String())
	}
}

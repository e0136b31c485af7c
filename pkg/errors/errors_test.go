package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true},
		{code: CodeAlreadyReported, status: http.StatusAlreadyReported, publicMsg: "already reported"},
		{code: CodeUpload, status: http.StatusBadGateway, publicMsg: "media upload failed", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestIsBusinessExcludesInfrastructureCodes(t *testing.T) {
	for _, code := range []Code{CodeNotFound, CodeConflict, CodeAlreadyReported, CodeStateConflict, CodeValidation} {
		if !IsBusiness(code) {
			t.Fatalf("expected %s to be a business outcome", code)
		}
	}
	for _, code := range []Code{CodeInternal, CodeDependency, CodeUpload} {
		if IsBusiness(code) {
			t.Fatalf("expected %s to stay private", code)
		}
	}
}

func TestAsFindsWrappedTypedError(t *testing.T) {
	inner := New(CodeNotFound, "voucher not found")
	outer := fmt.Errorf("load voucher: %w", inner)
	got := As(outer)
	if got == nil || got.Code() != CodeNotFound {
		t.Fatalf("expected wrapped not found, got %v", got)
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("connection refused"), "load voucher")
	if got := err.Error(); got != "DEPENDENCY_ERROR: load voucher: connection refused" {
		t.Fatalf("unexpected error string %q", got)
	}
	if got := New(CodeNotFound, "voucher not found").Error(); got != "NOT_FOUND: voucher not found" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestNewfAndIsCode(t *testing.T) {
	err := fmt.Errorf("upload: %w", Newf(CodeUpload, "image exceeds %d bytes", 10))
	if !IsCode(err, CodeUpload) {
		t.Fatalf("expected upload code in chain")
	}
	if IsCode(err, CodeInternal) {
		t.Fatalf("unexpected internal match")
	}
	if IsCode(stdErrors.New("plain"), CodeInternal) {
		t.Fatalf("untyped errors carry no code")
	}
	if got := As(err).Message(); got != "image exceeds 10 bytes" {
		t.Fatalf("unexpected message %q", got)
	}
}

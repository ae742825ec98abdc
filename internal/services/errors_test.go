package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarkerAndDetail(t *testing.T) {
	base := errors.New("connection refused")
	err := Wrap(ErrTransport, "backend", "approve", "posting comment", base)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	want := "transport error: backend: approve: posting comment: connection refused"
	if err.Error() != want {
		t.Fatalf("unexpected message: got %q want %q", err.Error(), want)
	}
}

func TestWrapDefaultsToTransport(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport default, got %v", err)
	}
	if err.Error() != "transport error: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{Wrap(ErrValidation, "pipeline", "generate", "draft not empty", nil), KindValidation},
		{Wrap(ErrNotFound, "store", "note", "unknown id", nil), KindNotFound},
		{Wrap(ErrConfiguration, "server", "start", "missing key", nil), KindConfiguration},
		{Wrap(ErrTransport, "backend", "list", "", errors.New("boom")), KindTransport},
		{fmt.Errorf("plain: %w", errors.New("boom")), KindUnknown},
	}
	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

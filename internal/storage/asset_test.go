package storage

import (
	"fmt"
	"strings"
	"testing"
)

// failingSpec always fails validation; passingSpec never does.
type failingSpec struct{}

func (s *failingSpec) Validate() error { return fmt.Errorf("spec is invalid") }

type passingSpec struct{}

func (s *passingSpec) Validate() error { return nil }

func TestAsset_Validate(t *testing.T) {
	tests := map[string]struct {
		version uint
		id      Identifier
		expErrs []string
	}{
		"valid asset": {
			version: 1,
			id:      "session-abc123",
		},
		"version not set": {
			version: 0,
			id:      "session-abc123",
			expErrs: []string{"version must be set"},
		},
		"empty identifier": {
			version: 1,
			id:      "",
			expErrs: []string{"id must be set"},
		},
		"identifier with spaces": {
			version: 1,
			id:      "bad id",
			expErrs: []string{"id must be alphanumeric"},
		},
		"identifier with underscore": {
			version: 1,
			id:      "bad_id",
			expErrs: []string{"id must be alphanumeric"},
		},
		"multiple errors": {
			version: 0,
			id:      "",
			expErrs: []string{"version must be set", "id must be set"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			asset := Asset[*passingSpec]{
				Version:    tt.version,
				Identifier: tt.id,
				Spec:       &passingSpec{},
			}

			err := asset.Validate()

			if len(tt.expErrs) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Errorf("expected errors %v, got nil", tt.expErrs)
				return
			}
			for _, e := range tt.expErrs {
				if !strings.Contains(err.Error(), e) {
					t.Errorf("error %q does not contain %q", err.Error(), e)
				}
			}
		})
	}
}

func TestAsset_Validate_SpecError(t *testing.T) {
	asset := Asset[*failingSpec]{
		Version:    1,
		Identifier: "ok-id",
		Spec:       &failingSpec{},
	}

	err := asset.Validate()
	if err == nil {
		t.Fatal("expected spec validation error")
	}
	if !strings.Contains(err.Error(), "spec is invalid") {
		t.Errorf("error %q does not contain spec failure", err.Error())
	}
}

package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coverageUpload struct {
	CommitID string `json:"commitId" validate:"required,hexadecimal"`
	Branch   string `json:"branch" validate:"required,branch,max=255"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      coverageUpload
		wantFields []string
	}{
		{"valid", coverageUpload{CommitID: "abc123", Branch: "feature/45-add-button"}, nil},
		{"missing both", coverageUpload{}, []string{"commitId", "branch"}},
		{"bad branch", coverageUpload{CommitID: "abc123", Branch: "feature..x"}, []string{"branch"}},
		{"bad commit", coverageUpload{CommitID: "not-a-sha", Branch: "main"}, []string{"commitId"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationErrors
			require.True(t, errors.As(err, &verr))

			var fields []string
			for _, e := range verr.Errors {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

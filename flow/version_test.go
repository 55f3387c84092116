package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalVersionNumber(t *testing.T) {
	tests := []struct {
		name    string
		version *string
		want    int
	}{
		{
			name:    "revision pattern present",
			version: ptr("R_3.2.4-v2.b4a3f309"),
			want:    2,
		},
		{
			name:    "no revision pattern",
			version: ptr("R_3.2.4"),
			want:    0,
		},
		{
			name:    "multi digit revision",
			version: ptr("weka_3.7.13-v12.deadbeef"),
			want:    12,
		},
		{
			name:    "field absent",
			version: nil,
			want:    0,
		},
		{
			name:    "digits without trailing dot do not match",
			version: ptr("lib-v3"),
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExternalVersionNumber(&Flow{ExternalVersion: tt.version})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExternalVersionNumber_NilFlow(t *testing.T) {
	_, err := ExternalVersionNumber(nil)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func ptr(s string) *string { return &s }

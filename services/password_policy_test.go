package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "Valid password",
			password: "personeria2024",
			wantErr:  false,
		},
		{
			name:     "Too short",
			password: "abc12",
			wantErr:  true,
			errMsg:   "password must be at least 8 characters long",
		},
		{
			name:     "Too long",
			password: strings.Repeat("a1", 40),
			wantErr:  true,
			errMsg:   "password must be at most 72 bytes long",
		},
		{
			name:     "Missing letter",
			password: "1234567890",
			wantErr:  true,
			errMsg:   "password must contain at least one letter",
		},
		{
			name:     "Missing number",
			password: "solamenteletras",
			wantErr:  true,
			errMsg:   "password must contain at least one number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

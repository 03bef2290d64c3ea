package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  Result
	}{
		{"exact match", Credentials{Username: "Hacker", Passcode: "444"}, Authenticated},
		{"wrong passcode", Credentials{Username: "Hacker", Passcode: "443"}, Rejected},
		{"case sensitive username", Credentials{Username: "hacker", Passcode: "444"}, Rejected},
		{"no trimming", Credentials{Username: "Hacker ", Passcode: "444"}, Rejected},
		{"empty", Credentials{}, Rejected},
	}

	p := NewPlaceholder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Authenticate(context.Background(), tt.creds)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "rejected", Rejected.String())
}

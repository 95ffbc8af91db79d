package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLValidator_Validate(t *testing.T) {
	v := NewURLValidator()

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "https image", input: "https://cdn.pixabay.com/photo/2024/01/01/a_640.jpg"},
		{name: "http allowed", input: "http://pixabay.com/api/"},
		{name: "surrounding space trimmed", input: "  https://pixabay.com/api/  "},
		{name: "empty", input: "", wantErr: "cannot be empty"},
		{name: "missing scheme", input: "pixabay.com/api", wantErr: "http or https"},
		{name: "ftp scheme", input: "ftp://pixabay.com/file", wantErr: "http or https"},
		{name: "javascript", input: "javascript:alert(1)", wantErr: "http or https"},
		{name: "no host", input: "https:///path", wantErr: "valid hostname"},
		{name: "localhost", input: "http://localhost:8080/x.jpg", wantErr: "localhost"},
		{name: "loopback", input: "http://127.0.0.1/x.jpg", wantErr: "localhost"},
		{name: "private ip", input: "http://192.168.1.10/x.jpg", wantErr: "private IP"},
		{name: "unspecified", input: "http://0.0.0.0/x.jpg", wantErr: "suspicious"},
		{name: "quote", input: "https://pixabay.com/\"x", wantErr: "invalid characters"},
		{name: "traversal", input: "https://pixabay.com/a/../b", wantErr: "traversal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := v.Validate(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, u.Host)
		})
	}
}

func TestURLValidator_MaxLength(t *testing.T) {
	v := NewURLValidator()
	long := "https://pixabay.com/" + strings.Repeat("a", v.MaxLength)

	_, err := v.Validate(long)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")
}

func TestPermissiveURLValidator(t *testing.T) {
	v := NewPermissiveURLValidator()

	for _, in := range []string{
		"http://localhost:8080/api/",
		"http://127.0.0.1:54321/img.jpg",
		"http://10.0.0.5/api/",
	} {
		_, err := v.Validate(in)
		assert.NoError(t, err, in)
	}

	_, err := v.Validate("file:///etc/passwd")
	assert.Error(t, err)
}

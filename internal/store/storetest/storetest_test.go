package storetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithSearchPath(t *testing.T) {
	tests := []struct {
		dsn, want string
	}{
		{"postgres://u@localhost/coeus", "postgres://u@localhost/coeus?search_path=s1"},
		{"postgres://u@localhost/coeus?sslmode=disable", "postgres://u@localhost/coeus?sslmode=disable&search_path=s1"},
		{"host=localhost dbname=coeus", "host=localhost dbname=coeus search_path=s1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, withSearchPath(tt.dsn, "s1"))
	}
}

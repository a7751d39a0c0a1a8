package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverDSN(t *testing.T) {
	tests := []struct {
		provider string
		raw      string
		want     string
	}{
		{"postgresql", "postgres://u:p@localhost:5432/app?sslmode=disable", "postgres://u:p@localhost:5432/app?sslmode=disable"},
		{"sqlite", "sqlite://./dev.db", "./dev.db"},
		{"sqlite3", "file:dev.db?cache=shared", "file:dev.db?cache=shared"},
		{"mysql", "root:secret@tcp(127.0.0.1:3306)/app", "root:secret@tcp(127.0.0.1:3306)/app"},
		{"mysql", "mysql://root:secret@db/app", "root:secret@tcp(db:3306)/app"},
		{"mysql", "mysql://root@db:3307/app?parseTime=true", "root@tcp(db:3307)/app?parseTime=true"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := driverDSN(tt.provider, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDriverDSNInvalidMySQL(t *testing.T) {
	_, err := driverDSN("mysql", "mysql:///app")
	assert.Error(t, err)

	_, err = driverDSN("mysql", "not a dsn")
	assert.Error(t, err)
}

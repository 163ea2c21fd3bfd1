package configs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeisme/filedock/pkg/configs"
)

func TestDBConfig_DSN(t *testing.T) {
	cases := map[string]struct {
		cfg      configs.DBConfig
		dsn      string
		safe     string
		typeName string
	}{
		"postgres default port": {
			cfg:      configs.DBConfig{Type: configs.Pg, Host: "db", User: "u", Password: "p", Database: "files", SSLMode: "disable"},
			dsn:      "host=db port=5432 user=u password=p dbname=files sslmode=disable",
			safe:     "host=db port=5432 user=u password=*** dbname=files sslmode=disable",
			typeName: "PostgreSQL",
		},
		"mariadb explicit port": {
			cfg:      configs.DBConfig{Type: configs.MariaDB, Host: "db", Port: 3307, User: "u", Database: "files"},
			dsn:      "u:@tcp(db:3307)/files?charset=utf8mb4&parseTime=True&loc=UTC",
			safe:     "u:@tcp(db:3307)/files?charset=utf8mb4&parseTime=True&loc=UTC",
			typeName: "MySQL",
		},
		"sqlite name": {
			cfg:      configs.DBConfig{Type: configs.SQLite, Database: "data/filedock"},
			dsn:      "file:data/filedock.db",
			safe:     "file:data/filedock.db",
			typeName: "SQLite",
		},
		"sqlite with suffix": {
			cfg:      configs.DBConfig{Type: configs.SQLite, Database: "filedock.sqlite"},
			dsn:      "file:filedock.sqlite",
			safe:     "file:filedock.sqlite",
			typeName: "SQLite",
		},
		"explicit dsn": {
			cfg:      configs.DBConfig{Type: configs.Postgres, DSN: "postgres://u:secret@db/files"},
			dsn:      "postgres://u:secret@db/files",
			safe:     "(custom dsn)",
			typeName: "PostgreSQL",
		},
		"unknown": {
			cfg:      configs.DBConfig{Type: "oracle", Database: "x"},
			typeName: "Unknown",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.dsn, tc.cfg.GetDSN())
			assert.Equal(t, tc.safe, tc.cfg.SafeDSN())
			assert.Equal(t, tc.typeName, tc.cfg.GetDBType())
		})
	}
}

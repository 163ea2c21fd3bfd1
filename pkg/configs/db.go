package configs

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// DBType 数据库驱动名，同一方言允许多个别名.
type DBType string

const (
	PostgreSQL DBType = "postgresql"
	Postgres   DBType = "postgres"
	Pg         DBType = "pg"
	MySQL      DBType = "mysql"
	MariaDB    DBType = "mariadb"
	SQLite     DBType = "sqlite"
)

const (
	DefaultDatabaseHost    = "localhost"
	DefaultDatabaseUser    = "filedock"
	DefaultDatabaseName    = "filedock" // SQLite 时为文件名（不含 .db）
	DefaultDatabaseSSLMode = "disable"
	DefaultMaxOpenConns    = 0 // 不限制
	DefaultMaxIdleConns    = 5
)

// dialect 描述一种方言：展示名、默认端口与 DSN 构造方式.
type dialect struct {
	name string
	port int
	dsn  func(c *DBConfig, password string) string
}

var dialects = map[DBType]dialect{}

func init() {
	pg := dialect{name: "PostgreSQL", port: 5432, dsn: func(c *DBConfig, pw string) string {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.port(), c.User, pw, c.Database, c.SSLMode)
	}}
	my := dialect{name: "MySQL", port: 3306, dsn: func(c *DBConfig, pw string) string {
		addr := net.JoinHostPort(c.Host, strconv.Itoa(c.port()))
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC", c.User, pw, addr, c.Database)
	}}
	lite := dialect{name: "SQLite", dsn: func(c *DBConfig, _ string) string { return c.sqliteDSN() }}

	for _, t := range []DBType{PostgreSQL, Postgres, Pg} {
		dialects[t] = pg
	}

	dialects[MySQL] = my
	dialects[MariaDB] = my
	dialects[SQLite] = lite
}

// DBConfig 文件记录数据库配置. DSN 非空时直接使用，忽略其余连接字段.
type DBConfig struct {
	Type         DBType `mapstructure:"type"           rule:"oneof=postgresql postgres pg mysql mariadb sqlite"`
	DSN          string `mapstructure:"dsn"`
	Host         string `mapstructure:"host"           rule:"omitempty,hostname|ip"`
	Port         int    `mapstructure:"port"           rule:"min=0,max=65535"` // 0 表示方言默认端口
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"       rule:"required_without=DSN"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns" rule:"min=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" rule:"min=0"`
}

// GetDBType 返回方言的展示名，未知类型返回 "Unknown".
func (c *DBConfig) GetDBType() string {
	if d, ok := dialects[c.Type]; ok {
		return d.name
	}

	return "Unknown"
}

// GetDSN 返回驱动连接串，未知类型返回空串.
func (c *DBConfig) GetDSN() string {
	return c.buildDSN(c.Password)
}

// SafeDSN 与 GetDSN 相同但隐藏密码，用于日志.
func (c *DBConfig) SafeDSN() string {
	if c.DSN != "" {
		return "(custom dsn)"
	}

	pw := ""
	if c.Password != "" {
		pw = "***"
	}

	return c.buildDSN(pw)
}

func (c *DBConfig) buildDSN(password string) string {
	if c.DSN != "" {
		return c.DSN
	}

	d, ok := dialects[c.Type]
	if !ok {
		return ""
	}

	return d.dsn(c, password)
}

func (c *DBConfig) port() int {
	if c.Port != 0 {
		return c.Port
	}

	return dialects[c.Type].port
}

// sqliteDSN ":memory:" 映射为共享内存库；已带 .db / .sqlite 后缀的路径不再追加.
func (c *DBConfig) sqliteDSN() string {
	switch {
	case c.Database == ":memory:":
		return "file::memory:?cache=shared"
	case strings.HasSuffix(c.Database, ".db"), strings.HasSuffix(c.Database, ".sqlite"):
		return "file:" + c.Database
	default:
		return "file:" + c.Database + ".db"
	}
}

func (c *DBConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("db.type", SQLite)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.host", DefaultDatabaseHost)
	v.SetDefault("db.port", 0)
	v.SetDefault("db.user", DefaultDatabaseUser)
	v.SetDefault("db.password", "")
	v.SetDefault("db.database", DefaultDatabaseName)
	v.SetDefault("db.sslmode", DefaultDatabaseSSLMode)
	v.SetDefault("db.max_open_conns", DefaultMaxOpenConns)
	v.SetDefault("db.max_idle_conns", DefaultMaxIdleConns)
}

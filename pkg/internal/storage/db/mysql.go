//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/filedock/pkg/configs"
)

func init() {
	RegisterDialectorFactory(func(dsn string) gorm.Dialector {
		return mysql.New(mysql.Config{DSN: dsn, DefaultStringSize: 512})
	}, configs.MySQL, configs.MariaDB)
}

// Package main 启动应用程序
package main

import (
	"os"

	"github.com/yeisme/filedock/pkg/cmd"
)

//	@title			FileDock API
//	@version		1.0
//	@description	FileDock 是按角色控制访问的文件上传与存储服务，提供上传、元数据查询、删除与公开下载.

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer <JWT>

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

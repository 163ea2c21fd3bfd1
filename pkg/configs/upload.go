package configs

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	DefaultUploadDir          = "uploads" // 相对于工作目录的上传根目录
	DefaultUploadRouteSegment = "files"   // 公开 URL 路由段
	DefaultUploadPrefix       = "file"    // 默认文件名前缀
)

// UploadConfig 上传存储配置.
// 文件大小限制与分类 MIME 表为构造期常量，不在此处配置.
type UploadConfig struct {
	RootDir       string `mapstructure:"root_dir"`
	RouteSegment  string `mapstructure:"route_segment"  rule:"required,route_segment"`
	DefaultPrefix string `mapstructure:"default_prefix" rule:"omitempty,prefix"`
}

// GetRootDir 返回上传根目录的绝对路径，空值时使用 <cwd>/uploads.
func (c *UploadConfig) GetRootDir() string {
	root := c.RootDir
	if root == "" {
		root = DefaultUploadDir
	}

	if filepath.IsAbs(root) {
		return filepath.Clean(root)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Clean(root)
	}

	return filepath.Join(cwd, root)
}

func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.root_dir", "")
	v.SetDefault("upload.route_segment", DefaultUploadRouteSegment)
	v.SetDefault("upload.default_prefix", DefaultUploadPrefix)
}

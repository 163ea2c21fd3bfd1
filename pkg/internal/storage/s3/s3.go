// Package s3 封装 MinIO 客户端，用于把上传文件镜像到 S3 兼容存储.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/filedock/pkg/configs"
	nlog "github.com/yeisme/filedock/pkg/log"
)

// Client 包装 MinIO 客户端，绑定单个镜像 bucket.
type Client struct {
	*minio.Client
	bucket    string
	keyPrefix string
}

// New 初始化 MinIO 客户端，bucket 不存在时尝试创建.
func New(ctx context.Context, cfg *configs.MirrorConfig) (*Client, error) {
	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	// 允许传入带 scheme 的 endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			secure = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("filedock", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.Bucket).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.Bucket).Msg("s3 connected")

	return &Client{Client: cli, bucket: cfg.Bucket, keyPrefix: strings.Trim(cfg.KeyPrefix, "/")}, nil
}

// Bucket 返回镜像 bucket.
func (c *Client) Bucket() string {
	return c.bucket
}

// ObjectKey 返回文件名对应的对象键.
func (c *Client) ObjectKey(filename string) string {
	if c.keyPrefix == "" {
		return filename
	}

	return path.Join(c.keyPrefix, filename)
}

// PutFile 上传一个文件到镜像 bucket.
func (c *Client) PutFile(ctx context.Context, filename string, r io.Reader, size int64, contentType string) error {
	_, err := c.PutObject(ctx, c.bucket, c.ObjectKey(filename), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", filename, err)
	}

	return nil
}

// RemoveFile 删除镜像对象，对象不存在不视为错误.
func (c *Client) RemoveFile(ctx context.Context, filename string) error {
	err := c.RemoveObject(ctx, c.bucket, c.ObjectKey(filename), minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("remove object %s: %w", filename, err)
	}

	return nil
}

// HealthCheck 通过检查 bucket 验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.BucketExists(ctx, c.bucket)
	return err
}

// Close 关闭客户端（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}

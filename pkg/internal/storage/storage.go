// Package storage 聚合文件服务依赖的全部存储资源：本地上传目录、数据库、元数据缓存、事件队列与 S3 镜像.
//
// Example:
//
//	ctx := context.Background()
//	mgr, err := storage.Init(ctx)
//	if err != nil {
//		// 处理错误
//	}
//	defer mgr.Close()
//
//	dbClient := mgr.GetDBClient()
//	files := mgr.Local
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/afero"

	"github.com/yeisme/filedock/pkg/configs"
	dbc "github.com/yeisme/filedock/pkg/internal/storage/db"
	kvc "github.com/yeisme/filedock/pkg/internal/storage/kv"
	"github.com/yeisme/filedock/pkg/internal/storage/local"
	mqc "github.com/yeisme/filedock/pkg/internal/storage/mq"
	s3c "github.com/yeisme/filedock/pkg/internal/storage/s3"
	nlog "github.com/yeisme/filedock/pkg/log"
)

// Manager 聚合所有存储资源. KV、MQ、S3 为可选，未启用时为 nil.
type Manager struct {
	Local *local.Store
	DB    *dbc.Client
	KV    *kvc.Client
	MQ    *mqc.Client
	S3    *s3c.Client
}

var (
	mgr     *Manager
	mgrErr  error
	mgrOnce sync.Once
)

// Init 使用全局配置初始化默认存储，重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	mgrOnce.Do(func() {
		mgr, mgrErr = New(ctx, configs.GetConfig(), afero.NewOsFs())
	})

	return mgr, mgrErr
}

// New 按配置创建 Manager. 任一必需资源失败时关闭已打开的资源并返回错误.
func New(ctx context.Context, cfg *configs.AppConfig, fs afero.Fs) (*Manager, error) {
	m := &Manager{
		Local: local.New(fs, local.Config{
			Root:         cfg.Upload.GetRootDir(),
			BaseURL:      cfg.Server.BaseURL,
			RouteSegment: cfg.Upload.RouteSegment,
		}),
	}

	dbi, err := dbc.New(ctx, &cfg.DB, dbc.Options{
		Debug:   cfg.Server.Debug,
		Metrics: cfg.Metrics.Enabled && cfg.Metrics.DBMetrics,
	})
	if err != nil {
		return nil, err
	}

	m.DB = dbi

	if err := m.DB.Migrate(ctx); err != nil {
		_ = m.Close()
		return nil, err
	}

	if cfg.KV.Enabled {
		kvi, err := kvc.New(ctx, &cfg.KV)
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("init kv: %w", err)
		}

		m.KV = kvi
	}

	if cfg.Events.Enabled || cfg.Mirror.Enabled {
		mqi, err := mqc.New(ctx, &cfg.MQ, mqc.Options{Metrics: cfg.Metrics.Enabled})
		if err != nil {
			_ = m.Close()
			return nil, err
		}

		m.MQ = mqi
	}

	if cfg.Mirror.Enabled {
		s3i, err := s3c.New(ctx, &cfg.Mirror)
		if err != nil {
			_ = m.Close()
			return nil, err
		}

		m.S3 = s3i
	}

	nlog.Logger().Info().
		Str("root", m.Local.Root()).
		Bool("kv", m.KV != nil).
		Bool("mq", m.MQ != nil).
		Bool("mirror", m.S3 != nil).
		Msg("storage manager initialized")

	return m, nil
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// GetS3Client 获取 S3 客户端.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// Ping 检查已启用的存储资源.
func (m *Manager) Ping(ctx context.Context) map[string]error {
	res := map[string]error{}

	if m.DB != nil {
		res["db"] = m.DB.Ping(ctx)
	}

	if m.KV != nil {
		res["kv"] = m.KV.Ping(ctx)
	}

	if m.MQ != nil {
		res["mq"] = m.MQ.Ping(ctx)
	}

	if m.S3 != nil {
		res["s3"] = m.S3.HealthCheck(ctx)
	}

	return res
}

// Close 释放全部资源.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	if m.S3 != nil {
		errs = append(errs, m.S3.Close())
	}

	return errors.Join(errs...)
}

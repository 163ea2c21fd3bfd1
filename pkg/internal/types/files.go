// Package types 定义 HTTP 请求与响应结构.
package types

import (
	"github.com/yeisme/filedock/pkg/internal/model"
	"github.com/yeisme/filedock/pkg/internal/repository"
)

// UploadQuery 上传请求的查询参数，文件内容位于 multipart 字段 file.
type UploadQuery struct {
	Category string `form:"category" json:"category" rule:"omitempty,category"`
	Prefix   string `form:"prefix"   json:"prefix"   rule:"omitempty,prefix"`
}

// ListFilesQuery 文件列表查询参数.
type ListFilesQuery struct {
	Page       int    `form:"page"        json:"page"        rule:"omitempty,min=1"`
	PageSize   int    `form:"page_size"   json:"page_size"   rule:"omitempty,min=1,max=200"`
	UploadedBy string `form:"uploaded_by" json:"uploaded_by" rule:"omitempty,max=255"`
	FileType   string `form:"file_type"   json:"file_type"   rule:"omitempty,max=64"`
}

// ToRepository 转换为仓储查询.
func (q ListFilesQuery) ToRepository() repository.ListQuery {
	rq := repository.ListQuery{
		Page:       q.Page,
		PageSize:   q.PageSize,
		UploadedBy: q.UploadedBy,
		FileType:   q.FileType,
	}
	rq.Normalize()

	return rq
}

// ListFilesResponse 文件列表响应.
type ListFilesResponse struct {
	Files    []model.FileRecord `json:"files"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filedock/pkg/internal/errs"
	"github.com/yeisme/filedock/pkg/internal/service"
	"github.com/yeisme/filedock/pkg/internal/types"
	"github.com/yeisme/filedock/pkg/internal/upload"
	"github.com/yeisme/filedock/pkg/middleware"
)

// multipartOverhead 请求体上限在文件大小限制之外额外允许的字节数（表单边界与头部）.
const multipartOverhead = 1 << 20

// Upload 处理 multipart 上传，文件位于字段 file，分类与前缀来自查询参数.
//
//	@Summary		上传文件
//	@Description	以 multipart 字段 file 上传单个文件，按分类校验 MIME 类型与大小后写入上传目录并保存元数据
//	@Tags			文件
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file				true	"上传的文件"
//	@Param			category	query		string				false	"上传分类"	Enums(image, document, video, audio, any)
//	@Param			prefix		query		string				false	"文件名前缀"
//	@Success		201			{object}	model.FileRecord	"已保存的文件记录"
//	@Failure		400			{object}	map[string]string	"文件缺失、类型不允许或超出大小限制"
//	@Failure		401			{object}	map[string]string	"未认证"
//	@Failure		403			{object}	map[string]string	"角色不允许"
//	@Failure		500			{object}	map[string]string	"服务器内部错误"
//	@Security		BearerAuth
//	@Router			/api/v1/files [post]
func (h *Handlers) Upload(c *gin.Context, who *middleware.Identity) {
	var q types.UploadQuery
	if err := bindQuery(c, &q); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	category, err := upload.ParseCategory(q.Category)
	if err != nil {
		middleware.AbortWithError(c, errs.Validation("%v", err))
		return
	}

	maxSize := h.files.Validator().MaxSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

	t, err := transientFromRequest(c)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	rec, err := h.files.Upload(c.Request.Context(), who.Name(), t, service.UploadOptions{
		Category: category,
		Prefix:   q.Prefix,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// transientFromRequest 读取 multipart 字段 file. 没有文件时返回 nil，由 service 报告 "no file uploaded".
func transientFromRequest(c *gin.Context) (*upload.Transient, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError

		switch {
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return nil, nil
		case errors.As(err, &tooLarge):
			return nil, errs.Validation("request body exceeds %d bytes", tooLarge.Limit)
		default:
			return nil, errs.Validation("invalid multipart body: %v", err)
		}
	}

	t, err := upload.FromFileHeader(fh)
	if err != nil {
		return nil, errs.PhysicalIO("failed to read uploaded file", err)
	}

	return t, nil
}

// List 分页列出文件记录.
//
//	@Summary		文件列表
//	@Description	分页列出文件记录，可按上传者与文件类型过滤
//	@Tags			文件
//	@Produce		json
//	@Param			page			query		int						false	"页码"
//	@Param			page_size		query		int						false	"每页条数，最大 200"
//	@Param			uploaded_by	query		string					false	"上传者"
//	@Param			file_type		query		string					false	"文件类型"
//	@Success		200				{object}	types.ListFilesResponse	"文件列表"
//	@Failure		400				{object}	map[string]string		"请求参数错误"
//	@Failure		401				{object}	map[string]string		"未认证"
//	@Failure		403				{object}	map[string]string		"角色不允许"
//	@Security		BearerAuth
//	@Router			/api/v1/files [get]
func (h *Handlers) List(c *gin.Context, _ *middleware.Identity) {
	var q types.ListFilesQuery
	if err := bindQuery(c, &q); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	rq := q.ToRepository()

	files, total, err := h.files.List(c.Request.Context(), rq)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.ListFilesResponse{
		Files:    files,
		Total:    total,
		Page:     rq.Page,
		PageSize: rq.PageSize,
	})
}

// Get 按 ID 返回文件元数据.
//
//	@Summary		获取文件元数据
//	@Tags			文件
//	@Produce		json
//	@Param			id		path		string				true	"文件 ID"
//	@Success		200		{object}	model.FileRecord	"文件记录"
//	@Failure		401		{object}	map[string]string	"未认证"
//	@Failure		404		{object}	map[string]string	"文件不存在"
//	@Security		BearerAuth
//	@Router			/api/v1/files/{id} [get]
func (h *Handlers) Get(c *gin.Context, _ *middleware.Identity) {
	rec, err := h.files.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GetByFilename 按存储文件名返回文件元数据.
//
//	@Summary		按文件名获取元数据
//	@Tags			文件
//	@Produce		json
//	@Param			filename	path		string				true	"存储文件名"
//	@Success		200			{object}	model.FileRecord	"文件记录"
//	@Failure		401			{object}	map[string]string	"未认证"
//	@Failure		404			{object}	map[string]string	"文件不存在"
//	@Security		BearerAuth
//	@Router			/api/v1/files/name/{filename} [get]
func (h *Handlers) GetByFilename(c *gin.Context, _ *middleware.Identity) {
	rec, err := h.files.GetByFilename(c.Request.Context(), c.Param("filename"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// Delete 删除文件记录并尝试删除物理文件，返回 DeletionOutcome.
//
//	@Summary		删除文件
//	@Description	删除物理文件与文件记录. 物理删除失败不影响记录删除，结果中给出物理删除状态
//	@Tags			文件
//	@Produce		json
//	@Param			id		path		string					true	"文件 ID"
//	@Success		200		{object}	service.DeletionOutcome	"删除结果"
//	@Failure		401		{object}	map[string]string		"未认证"
//	@Failure		403		{object}	map[string]string		"角色不允许"
//	@Failure		404		{object}	map[string]string		"文件不存在"
//	@Failure		500		{object}	map[string]string		"记录删除失败"
//	@Security		BearerAuth
//	@Router			/api/v1/files/{id} [delete]
func (h *Handlers) Delete(c *gin.Context, who *middleware.Identity) {
	out, err := h.files.Remove(c.Request.Context(), who.Name(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

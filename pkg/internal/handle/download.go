package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filedock/pkg/middleware"
)

// Serve 公开下载 /{route_segment}/:filename. ETag 为内容校验和，支持条件请求与 Range.
//
//	@Summary		下载文件
//	@Description	公开访问已上传文件，路径首段为配置项 upload.route_segment（默认 files）
//	@Tags			下载
//	@Produce		octet-stream
//	@Param			filename	path		string				true	"存储文件名"
//	@Success		200			{file}		file				"文件内容"
//	@Success		206			{file}		file				"部分内容"
//	@Success		304			{string}	string				"未修改"
//	@Failure		404			{object}	map[string]string	"文件不存在"
//	@Router			/files/{filename} [get]
func (h *Handlers) Serve(c *gin.Context, _ *middleware.Identity) {
	rec, f, info, err := h.files.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	defer f.Close()

	header := c.Writer.Header()
	header.Set("ETag", strconv.Quote(rec.Checksum))
	header.Set("Content-Type", rec.MimeType)
	header.Set("Cache-Control", "public, max-age=31536000, immutable")
	header.Set("X-Content-Type-Options", "nosniff")
	// 上传内容不可信，禁止其中的脚本在本站源下执行
	header.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; sandbox")

	http.ServeContent(c.Writer, c.Request, rec.Filename, info.ModTime(), f)
}

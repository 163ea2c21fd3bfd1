package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filedock/pkg/middleware"
)

// Me 返回调用方身份与角色.
//
//	@Summary		当前身份
//	@Tags			认证
//	@Produce		json
//	@Success		200	{object}	middleware.Identity	"调用方身份"
//	@Failure		401	{object}	map[string]string	"未认证"
//	@Security		BearerAuth
//	@Router			/api/v1/auth/me [get]
func Me(c *gin.Context, who *middleware.Identity) {
	c.JSON(http.StatusOK, who)
}

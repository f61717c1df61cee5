package bridge

import "github.com/gin-gonic/gin"

type IHandler interface {
	Execute(c *gin.Context)
	GetStatus(c *gin.Context)
	GetHistory(c *gin.Context)
	Resume(c *gin.Context)
	Cancel(c *gin.Context)
	GetDepositBalance(c *gin.Context)
}

package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/lk2023060901/scholar-ai/internal/pkg/errors"
)

// ProcessingFailedAnswer 内部错误时返回的兜底回答
const ProcessingFailedAnswer = "Sorry, an error occurred while processing your request."

// OK 成功响应（200），直接输出数据
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error 错误响应，fields 中的字段与 error 一同输出
func Error(c *gin.Context, httpStatus int, message string, fields gin.H) {
	body := gin.H{"error": message}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(httpStatus, body)
}

// HandleError 统一错误处理（使用AppError），HTTP 状态由错误码决定
func HandleError(c *gin.Context, err error, fields gin.H) {
	if err == nil {
		return
	}

	status, message := apperrors.Describe(err)

	body := gin.H{"code": apperrors.ExtractCode(err)}
	for k, v := range fields {
		body[k] = v
	}
	Error(c, status, message, body)
}

// AnswerError 问答接口的错误响应：{answer, sources: [], error}
func AnswerError(c *gin.Context, httpStatus int, answer, message string) {
	Error(c, httpStatus, message, gin.H{
		"answer":  answer,
		"sources": []interface{}{},
	})
}

// HandleAnswerError 问答接口的统一错误处理，回答使用兜底文本
func HandleAnswerError(c *gin.Context, err error) {
	HandleError(c, err, gin.H{
		"answer":  ProcessingFailedAnswer,
		"sources": []interface{}{},
	})
}

package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    MetaInfo   `json:"meta"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MetaInfo struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// apiError pairs an error code with the status it is served under.
type apiError struct {
	status int
	code   string
}

var (
	errBattleNotFound = apiError{http.StatusNotFound, "BATTLE_NOT_FOUND"}
	errInvalidLimit   = apiError{http.StatusBadRequest, "INVALID_LIMIT"}
	errStoreDisabled  = apiError{http.StatusServiceUnavailable, "STORE_DISABLED"}
	errInternal       = apiError{http.StatusInternalServerError, "INTERNAL_ERROR"}
)

func meta(c *gin.Context) MetaInfo {
	return MetaInfo{Timestamp: time.Now().UTC(), RequestID: c.GetString(requestIDKey)}
}

func writeData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Meta: meta(c)})
}

func writeError(c *gin.Context, e apiError, message string) {
	c.JSON(e.status, Response{
		Error: &ErrorInfo{Code: e.code, Message: message},
		Meta:  meta(c),
	})
}

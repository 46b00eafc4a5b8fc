package util

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data"`
}

type APIErrorParams struct {
	Msg string
	Err error
}

type APISuccessParams struct {
	Msg  string
	Data interface{}
}

// Contains reports whether d is present in dl.
func Contains(d string, dl []string) bool {
	for _, v := range dl {
		if v == d {
			return true
		}
	}
	return false
}

func respondError(c *gin.Context, status int, params APIErrorParams) {
	errMsg := ""
	if params.Err != nil {
		errMsg = params.Err.Error()
	}
	c.JSON(status, APIResponse{
		Success: false,
		Error:   errMsg,
		Msg:     params.Msg,
		Data:    map[string]interface{}{},
	})
}

func respondSuccess(c *gin.Context, status int, params APISuccessParams) {
	c.JSON(status, APIResponse{
		Success: true,
		Msg:     params.Msg,
		Data:    params.Data,
	})
}

// CallErrorNotFound returns a 404 envelope.
func CallErrorNotFound(c *gin.Context, params APIErrorParams) {
	respondError(c, http.StatusNotFound, params)
}

// CallUserError returns a 400 envelope for client-side mistakes.
func CallUserError(c *gin.Context, params APIErrorParams) {
	respondError(c, http.StatusBadRequest, params)
}

// CallUserNotAuthorized returns a 401 envelope.
func CallUserNotAuthorized(c *gin.Context, params APIErrorParams) {
	respondError(c, http.StatusUnauthorized, params)
}

// CallUserForbidden returns a 403 envelope when the caller lacks permission
// on the resource.
func CallUserForbidden(c *gin.Context, params APIErrorParams) {
	respondError(c, http.StatusForbidden, params)
}

// CallTooManyRequests returns a 429 envelope for throttled clients.
func CallTooManyRequests(c *gin.Context, params APIErrorParams) {
	respondError(c, http.StatusTooManyRequests, params)
}

// CallServerError returns a 500 envelope.
func CallServerError(c *gin.Context, params APIErrorParams) {
	respondError(c, http.StatusInternalServerError, params)
}

// CallSuccessOK returns a 200 envelope with the given message and data.
func CallSuccessOK(c *gin.Context, params APISuccessParams) {
	respondSuccess(c, http.StatusOK, params)
}

// CallSuccessCreated returns a 201 envelope after a resource is created.
func CallSuccessCreated(c *gin.Context, params APISuccessParams) {
	respondSuccess(c, http.StatusCreated, params)
}

// NormalizeEmail trims surrounding whitespace and lowercases the address so
// lookups and the uniqueness constraint treat spelling variants as the same.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

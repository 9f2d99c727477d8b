package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// validation errors name fields the way clients send them
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: status < http.StatusBadRequest, Message: message})
}

// statusForError maps model errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, utils.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, utils.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, utils.ErrorRecordNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case utils.IsDuplicateKey(err):
		return http.StatusConflict
	case errors.Is(err, utils.ErrMissingFields),
		errors.Is(err, utils.ErrInvalidInput),
		errors.Is(err, utils.ErrInvalidTransition),
		errors.Is(err, utils.ErrInsufficientBalance),
		errors.Is(err, utils.ErrAlreadySerialized):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		c.Error(err)
		message = "internal server error"
	} else if status == http.StatusConflict && !errors.Is(err, utils.ErrDuplicate) {
		message = "duplicate record"
	}
	c.JSON(status, Response{Success: false, Message: message})
}

// bindJSON answers 400 itself and returns false when the body does not bind.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if fields := utils.ProcessValidationErrors(err); fields != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Message: utils.ErrMissingFields.Error(), Data: fields})
			return false
		}
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid query parameters")
		return false
	}
	return true
}

// paramId parses :id, answering 400 when it is not a positive integer.
func paramId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondMessage(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// queryBool reads an optional true/false query parameter.
func queryBool(c *gin.Context, key string) *bool {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

func MethodNotAllowed(c *gin.Context) {
	respondMessage(c, http.StatusMethodNotAllowed, "method not allowed")
}

func NotFound(c *gin.Context) {
	respondMessage(c, http.StatusNotFound, "route not found")
}

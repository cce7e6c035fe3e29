package api

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lalith-99/bubblefeed/internal/middleware"
	"go.uber.org/zap"
)

func init() {
	// Report validation failures under the JSON field name the client sent
	// ("size_level"), not the Go field name ("SizeLevel").
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// bindCreate decodes a create body. Missing required fields produce
// 400 {"error":"validation failed","fields":{...}}.
func bindCreate(c *gin.Context, req any) bool {
	return bind(c, req, false)
}

// bindPatch decodes a partial update. An empty body is an empty patch.
func bindPatch(c *gin.Context, req any) bool {
	return bind(c, req, true)
}

func bind(c *gin.Context, req any, allowEmpty bool) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	if allowEmpty && errors.Is(err, io.EOF) {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			fields[fe.Field()] = rule
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return false
	}
	if errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is required"})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	return false
}

// pathID reads a positive integer path parameter. On failure it writes
// 400 {"error":"invalid <name> id"} and returns false.
func pathID(c *gin.Context, param, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " id"})
		return 0, false
	}
	return id, true
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

func deleted(c *gin.Context, what string) {
	c.JSON(http.StatusOK, gin.H{"message": what + " deleted successfully"})
}

// serverError logs err and answers 500 {"error":"failed to <op>"}. The
// underlying error never reaches the client.
func serverError(c *gin.Context, logger *zap.Logger, op string, err error) {
	logger.Error("failed to "+op,
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + op})
}

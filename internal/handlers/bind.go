package handlers

import (
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/volunteerhub/backend/internal/services"
	"github.com/volunteerhub/backend/pkg/response"
)

var setupValidatorOnce sync.Once

// SetupValidator makes gin's binding engine report JSON field names and know
// the custom tags used by the request structs. It must run before the first
// request is bound.
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			services.ConfigureValidator(v)
		}
	})
}

// bindJSON binds the request body into req and answers 400 with field
// details when that fails.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, services.ValidationFailed(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.Error(c, services.ValidationFailed(err))
		return false
	}
	return true
}

// paramID parses a numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.Error(c, response.NewBadRequest("invalid "+name))
		return 0, false
	}
	return uint(id), true
}

package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// decimal2Pattern 限制最多两位小数。
var decimal2Pattern = regexp.MustCompile(`^-?\d+(\.\d{1,2})?$`)

// RegisterValidators 向 gin 的校验器注册自定义规则，启动时调用一次。
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("decimal2", func(fl validator.FieldLevel) bool {
		return decimal2Pattern.MatchString(fl.Field().String())
	})
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/turnon/tasks/tasklist/common"
)

var errBadRequest = errors.New("invalid request body")

var registerTagName sync.Once

// useJSONFieldNames 校验错误中使用json字段名
func useJSONFieldNames() {
	registerTagName.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindingErr 把请求体解析错误归类
func bindingErr(err error) error {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case common.IsValidation(err):
		return err
	case errors.As(err, &verrs) && len(verrs) > 0:
		return &common.ValidationError{Field: verrs[0].Field(), Reason: "is " + verrs[0].Tag()}
	case errors.As(err, &typeErr):
		return &common.ValidationError{Field: typeErr.Field, Reason: "must be a " + typeErr.Type.String()}
	case errors.Is(err, io.EOF):
		return fmt.Errorf("%w: empty body", errBadRequest)
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

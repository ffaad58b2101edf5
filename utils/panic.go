package utils

import (
	"github.com/vuuvv/vrecord/log"
)

// Catch 恢复 panic 并交给 handler 处理(记录日志由调用方决定), 需要直接 defer 调用
func Catch(handler func(reason any)) {
	if r := recover(); r != nil {
		handler(r)
	}
}

// CallWithError runs fn and turns a panic into an error.
func CallWithError(fn func() error) (err error) {
	defer Catch(func(reason any) {
		_, err = log.CastToError(reason)
	})
	return fn()
}

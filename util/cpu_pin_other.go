//go:build !linux

package util

import "errors"

func PinTo(cpus ...int) (func(), error) {
	return nil, errors.New("cpu pinning is only supported on linux")
}

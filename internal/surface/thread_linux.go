//go:build linux

package surface

import "golang.org/x/sys/unix"

func currentThread() int {
	return unix.Gettid()
}

//go:build !windows

package launcher

import "syscall"

func detached() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

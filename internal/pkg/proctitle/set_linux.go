//go:build linux

package proctitle

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Set applies a short process title on Linux via PR_SET_NAME.
func Set(title string) error {
	name, err := normalize(title, linuxProcNameMax)
	if err != nil {
		return err
	}

	if len(os.Args) > 0 {
		os.Args[0] = title
	}

	b := make([]byte, linuxProcNameMax+1)
	copy(b, name)

	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&b[0])), 0, 0, 0)
}

//go:build !linux

package proctitle

import (
	"errors"
	"os"
	"strings"
)

// Set only rewrites os.Args[0] on non-Linux platforms.
func Set(title string) error {
	name, err := normalize(title, len(title))
	if errors.Is(err, errEmptyTitle) {
		return nil
	}
	if len(os.Args) > 0 {
		os.Args[0] = strings.TrimSpace(name)
	}
	return nil
}

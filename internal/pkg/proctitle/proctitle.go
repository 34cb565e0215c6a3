// Package proctitle renames the running process so it is easy to spot in ps/top.
package proctitle

import (
	"errors"
	"strings"
)

// linuxProcNameMax is the PR_SET_NAME limit, excluding the trailing NUL.
const linuxProcNameMax = 15

var errEmptyTitle = errors.New("empty process title")

// normalize trims title and cuts it to max bytes without splitting a rune.
func normalize(title string, max int) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errEmptyTitle
	}
	if len(title) <= max {
		return title, nil
	}
	cut := 0
	for i := range title {
		if i > max {
			break
		}
		cut = i
	}
	if cut == 0 {
		return title[:max], nil
	}
	return title[:cut], nil
}

package directory

import (
	"strings"

	"golang.org/x/text/cases"
)

// UsernameIdentity keeps opaque usernames case-sensitive.
func UsernameIdentity(identity string) string {
	return strings.TrimSpace(identity)
}

// EmailIdentity folds case so addresses compare the way mail servers do.
func EmailIdentity(identity string) string {
	return cases.Fold().String(strings.TrimSpace(identity))
}

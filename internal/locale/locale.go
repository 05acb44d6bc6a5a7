package locale

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

// envVars are checked in POSIX priority order.
var envVars = []string{"LC_ALL", "LC_MESSAGES", "LANG"}

// System resolves the caller's ambient locale from the environment.
// Falls back to en-US when nothing usable is set.
func System() language.Tag {
	for _, key := range envVars {
		if tag, ok := parse(os.Getenv(key)); ok {
			return tag
		}
	}

	return language.AmericanEnglish
}

// parse normalizes a POSIX locale string ("de_DE.UTF-8@euro") into a BCP 47
// tag. The "C" and "POSIX" pseudo-locales carry no language information.
func parse(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" || value == "C" || value == "POSIX" {
		return language.Und, false
	}

	if i := strings.IndexAny(value, ".@"); i >= 0 {
		value = value[:i]
	}

	value = strings.ReplaceAll(value, "_", "-")

	tag, err := language.Parse(value)
	if err != nil || tag == language.Und {
		return language.Und, false
	}

	return tag, true
}

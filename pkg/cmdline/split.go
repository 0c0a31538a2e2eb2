package cmdline

import (
	"errors"
	"strings"
)

var ErrUnterminatedQuote = errors.New("unterminated quote")

// Split breaks a command line into words. Single and double quotes group
// words, a backslash escapes the next rune outside single quotes.
func Split(input string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		// a quoted empty string is still a word
		inWord                      bool
		inSingle, inDouble, escaped bool
	)

	for _, r := range input {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch {
		case r == '\\' && !inSingle:
			escaped, inWord = true, true
		case r == '\'' && !inDouble:
			inSingle, inWord = !inSingle, true
		case r == '"' && !inSingle:
			inDouble, inWord = !inDouble, true
		case (r == ' ' || r == '\t') && !inSingle && !inDouble:
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if inSingle || inDouble {
		return nil, ErrUnterminatedQuote
	}
	if escaped {
		// trailing backslash is kept as is
		current.WriteRune('\\')
	}
	if inWord {
		words = append(words, current.String())
	}

	return words, nil
}

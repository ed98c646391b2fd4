package compiler

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Rule patterns are globs over item identifiers: * matches within one path
// segment, ** matches across segments, ? matches one character. Kept
// hand-rolled because path.Match has no ** support.
var (
	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}
)

func matchPattern(pattern, identifier string) (bool, error) {
	patternMu.Lock()
	re, ok := patternCache[pattern]
	patternMu.Unlock()
	if !ok {
		var err error
		re, err = compilePattern(pattern)
		if err != nil {
			return false, err
		}
		patternMu.Lock()
		patternCache[pattern] = re
		patternMu.Unlock()
	}
	return re.MatchString(identifier), nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				// ** spans segments; **/ matches zero or more directories.
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					sb.WriteString("(.*/)?")
					i += 2
				} else {
					sb.WriteString(".*")
					i++
				}
			} else {
				sb.WriteString("[^/]*")
			}
		case '?':
			sb.WriteString("[^/]")
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteString("$")
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("invalid rule pattern %q: %w", pattern, err)
	}
	return re, nil
}

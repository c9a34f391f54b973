package service

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// DefaultPasswordPattern requires one uppercase letter, two digits and
// 8 to 12 alphanumeric characters.
const DefaultPasswordPattern = `^(?=.*[A-Z])(?=.*\d.*\d)[A-Za-z\d]{8,12}$`

const passwordMatchTimeout = 50 * time.Millisecond

// PasswordPolicy validates candidate passwords against one configurable
// pattern. The pattern must match the whole candidate.
type PasswordPolicy struct {
	pattern string
	re      *regexp2.Regexp
}

// patternOptions are the regexp2 options every password pattern is compiled
// with. ECMAScript semantics keep \d and \w ASCII-only.
const patternOptions = regexp2.ECMAScript

// NewPasswordPolicy compiles pattern. Lookaheads are supported.
func NewPasswordPolicy(pattern string) (*PasswordPolicy, error) {
	if pattern == "" {
		pattern = DefaultPasswordPattern
	}
	re, err := regexp2.Compile(`^(?:`+pattern+`)$`, patternOptions)
	if err != nil {
		return nil, fmt.Errorf("compile password pattern: %w", err)
	}
	re.MatchTimeout = passwordMatchTimeout
	return &PasswordPolicy{pattern: pattern, re: re}, nil
}

// Pattern returns the configured rule.
func (p *PasswordPolicy) Pattern() string { return p.pattern }

// Validate reports whether candidate satisfies the policy. Nil is never valid.
func (p *PasswordPolicy) Validate(candidate *string) bool {
	if candidate == nil {
		return false
	}
	return p.ValidateString(*candidate)
}

func (p *PasswordPolicy) ValidateString(candidate string) bool {
	m, err := p.re.FindStringMatch(candidate)
	if err != nil || m == nil {
		return false
	}
	return m.Index == 0 && m.Length == utf8.RuneCountInString(candidate)
}

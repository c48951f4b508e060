package validate

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	maxSimilarity     = 0.7
)

const (
	MsgPasswordTooShort = "This password is too short. It must contain at least 8 characters."
	MsgPasswordNumeric  = "This password is entirely numeric."
	MsgPasswordCommon   = "This password is too common."
	MsgPasswordMismatch = "Passwords do not match."
)

//go:embed common-passwords.txt
var commonPasswordsFile string

var commonPasswords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(commonPasswordsFile, "\n") {
		if line = strings.TrimSpace(strings.ToLower(line)); line != "" {
			set[line] = struct{}{}
		}
	}
	return set
}()

var nonWord = regexp.MustCompile(`\W+`)

// Password runs the strength rules and returns one message per violated rule.
// username and email may be empty, in which case the similarity rule skips them.
func Password(password, username, email string) []string {
	var msgs []string

	if utf8.RuneCountInString(password) < MinPasswordLength {
		msgs = append(msgs, MsgPasswordTooShort)
	}
	if isNumeric(password) {
		msgs = append(msgs, MsgPasswordNumeric)
	}
	if _, ok := commonPasswords[strings.TrimSpace(strings.ToLower(password))]; ok {
		msgs = append(msgs, MsgPasswordCommon)
	}

	attrs := []struct{ value, name string }{
		{username, "username"},
		{email, "email address"},
	}
	for _, a := range attrs {
		if a.value != "" && tooSimilar(password, a.value) {
			msgs = append(msgs, fmt.Sprintf("The password is too similar to the %s.", a.name))
		}
	}

	return msgs
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// tooSimilar compares the password against the attribute and each of its
// non-word-separated parts.
func tooSimilar(password, attr string) bool {
	password = strings.ToLower(password)
	attr = strings.ToLower(attr)

	parts := append(nonWord.Split(attr, -1), attr)
	for _, part := range parts {
		if part == "" || exceedsLengthRatio(password, part) {
			continue
		}
		if overlapRatio(password, part) >= maxSimilarity {
			return true
		}
	}
	return false
}

// exceedsLengthRatio skips attribute parts so short relative to the password
// that they cannot be meaningfully similar.
func exceedsLengthRatio(password, part string) bool {
	pwLen := utf8.RuneCountInString(password)
	partLen := utf8.RuneCountInString(part)
	return pwLen >= 10*partLen && float64(partLen) < maxSimilarity/2*float64(pwLen)
}

// overlapRatio is 2*M/T where M is the size of the multiset intersection of
// the two strings' characters and T their combined length. It is an upper
// bound on the longest-matching-blocks ratio.
func overlapRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}

	avail := make(map[rune]int)
	for _, r := range b {
		avail[r]++
	}
	matches := 0
	for _, r := range a {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}

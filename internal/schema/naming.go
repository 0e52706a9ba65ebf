// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package schema

import "strings"

// ToLowerCamel converts a lower_underscore identifier to lowerCamel.
//
// Words are split on '_'. The first word is lowercased, every following word
// gets an upper-case first letter and a lowercased remainder, so "within_view"
// becomes "withinView" and "a__b" becomes "aB". Only ASCII letters change
// case; the result never depends on locale.
func ToLowerCamel(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i, word := range strings.Split(s, "_") {
		if i == 0 {
			b.WriteString(asciiLower(word))
			continue
		}
		if word == "" {
			continue
		}
		b.WriteByte(asciiUpperByte(word[0]))
		b.WriteString(asciiLower(word[1:]))
	}
	return b.String()
}

// ToLowerUnderscore converts a lowerCamel identifier to lower_underscore.
// It is the inverse of ToLowerCamel for identifiers without consecutive
// capitals or underscores.
func ToLowerUnderscore(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c + ('a' - 'A'))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			buf := []byte(s)
			for j := i; j < len(buf); j++ {
				if buf[j] >= 'A' && buf[j] <= 'Z' {
					buf[j] += 'a' - 'A'
				}
			}
			return string(buf)
		}
	}
	return s
}

func asciiUpperByte(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// Package feed is the demo streaming source. It plays scripted assistant
// replies token by token into a running program, paced by a rate limiter,
// the way a model backend would stream them.
package feed

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrEmptyScript is returned when a script has no replies.
var ErrEmptyScript = errors.New("script has no replies")

//go:embed default.toml
var defaultScript string

// Reply is one scripted assistant answer.
type Reply struct {
	// Match selects the reply when the prompt contains it (case-insensitive).
	// Replies without Match are used in rotation.
	Match    string `toml:"match"`
	Thoughts string `toml:"thoughts"`
	Content  string `toml:"content"`
}

// Script is an ordered set of replies.
type Script struct {
	Replies []Reply `toml:"reply"`
}

// ParseScript decodes a TOML script.
func ParseScript(data string) (Script, error) {
	var s Script
	if _, err := toml.Decode(data, &s); err != nil {
		return Script{}, fmt.Errorf("decode script: %w", err)
	}
	if len(s.Replies) == 0 {
		return Script{}, ErrEmptyScript
	}
	return s, nil
}

// LoadScript reads a TOML script from path.
func LoadScript(path string) (Script, error) {
	var s Script
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Script{}, fmt.Errorf("load script %s: %w", path, err)
	}
	if len(s.Replies) == 0 {
		return Script{}, fmt.Errorf("load script %s: %w", path, ErrEmptyScript)
	}
	return s, nil
}

// DefaultScript returns the built-in script.
func DefaultScript() Script {
	s, err := ParseScript(defaultScript)
	if err != nil {
		panic(fmt.Sprintf("feed: built-in script: %v", err))
	}
	return s
}

// pick chooses the reply for prompt. n is the number of replies given so far
// and drives the rotation.
func (s Script) pick(prompt string, n int) Reply {
	p := strings.ToLower(prompt)
	var rotation []Reply
	for _, r := range s.Replies {
		if r.Match == "" {
			rotation = append(rotation, r)
			continue
		}
		if strings.Contains(p, strings.ToLower(r.Match)) {
			return r
		}
	}
	if len(rotation) == 0 {
		return s.Replies[n%len(s.Replies)]
	}
	return rotation[n%len(rotation)]
}

// tokens splits s into word-sized pieces that concatenate back to s.
func tokens(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if (r == ' ' || r == '\n') && i > start {
			out = append(out, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

package envutil

import (
	"os"
	"runtime"
	"strings"
)

// String returns the trimmed value of the environment variable, or def if empty.
func String(getenv func(string) string, key string, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

// Bool parses common boolean environment variable values, returning def on empty/unknown.
func Bool(getenv func(string) string, key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(getenv(key)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// The helpers below build child-process environments. They copy the input
// slice and never touch the parent process environment.

// Base returns env when non-nil, otherwise a copy of os.Environ().
func Base(env []string) []string {
	if env != nil {
		return append([]string(nil), env...)
	}
	return os.Environ()
}

// Set replaces (or appends) key=value.
func Set(env []string, key, value string) []string {
	out := Unset(env, key)
	return append(out, key+"="+value)
}

// Unset removes every entry for key.
func Unset(env []string, key string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		k, _, _ := strings.Cut(kv, "=")
		if sameKey(k, key) {
			continue
		}
		out = append(out, kv)
	}
	return out
}

// Lookup returns the last value for key.
func Lookup(env []string, key string) (string, bool) {
	val, found := "", false
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if ok && sameKey(k, key) {
			val, found = v, true
		}
	}
	return val, found
}

// PrependPath puts dir in front of PATH using the host list separator.
func PrependPath(env []string, dir string) []string {
	return prependPath(env, dir, runtime.GOOS)
}

func prependPath(env []string, dir string, goos string) []string {
	sep := ":"
	if goos == "windows" {
		sep = ";"
	}
	key := "PATH"
	for _, kv := range env {
		k, _, _ := strings.Cut(kv, "=")
		if strings.EqualFold(k, "PATH") && goos == "windows" {
			key = k
		}
	}

	cur, _ := Lookup(env, key)
	next := dir
	if cur != "" {
		next = dir + sep + cur
	}
	return Set(env, key, next)
}

func sameKey(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

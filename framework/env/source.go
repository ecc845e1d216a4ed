package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Source is the raw key/value mapping a schema is validated against.
type Source map[string]string

// Environ snapshots the process environment.
func Environ() Source {
	kv := os.Environ()
	src := make(Source, len(kv))
	for _, pair := range kv {
		if k, v, ok := strings.Cut(pair, "="); ok {
			src[k] = v
		}
	}
	return src
}

// ReadFiles parses dotenv files into a Source without touching the process
// environment. Later files override earlier ones.
func ReadFiles(paths ...string) (Source, error) {
	src := make(Source)
	for _, p := range paths {
		m, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("env: read %s: %w", p, err)
		}
		for k, v := range m {
			src[k] = v
		}
	}
	return src, nil
}

// Merge layers sources left to right: a key in a later source wins.
//
//	// dotenv semantics: the real environment beats the file
//	src := env.Merge(fileValues, env.Environ())
func Merge(sources ...Source) Source {
	out := make(Source)
	for _, s := range sources {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

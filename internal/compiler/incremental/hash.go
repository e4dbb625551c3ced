// Package incremental implements the incremental compilation engine for
// ArcLang: a content-addressed compilation cache, a dependency graph with
// cycle detection, invalidation strategies, and an orchestrator that
// recompiles the minimal set of units after an edit.
package incremental

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
)

// ContentHasher computes deterministic digests used as cache validity keys.
type ContentHasher struct{}

// NewContentHasher creates a new content hasher.
func NewContentHasher() *ContentHasher {
	return &ContentHasher{}
}

// HashContent computes a SHA-256 hash of the given content.
func (ch *ContentHasher) HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashString computes a SHA-256 hash of the given string.
func (ch *ContentHasher) HashString(content string) string {
	return ch.HashContent([]byte(content))
}

// HashFile computes a SHA-256 hash of the file contents.
func (ch *ContentHasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", &FileReadError{Path: path, Reason: err}
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", &FileReadError{Path: path, Reason: err}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashAST canonically serializes a structured value and hashes the result,
// so structural content rather than raw text can be fingerprinted.
func (ch *ContentHasher) HashAST(value interface{}) (string, error) {
	hasher := sha256.New()
	if err := writeCanonical(hasher, reflect.ValueOf(value)); err != nil {
		return "", &SerializationError{Reason: err}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// writeCanonical emits a deterministic byte stream for a value: struct
// fields in declaration order, map entries in sorted key order. Identical
// values always produce identical streams.
func writeCanonical(w io.Writer, v reflect.Value) error {
	if !v.IsValid() {
		_, err := io.WriteString(w, "nil;")
		return err
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			_, err := io.WriteString(w, "nil;")
			return err
		}
		return writeCanonical(w, v.Elem())

	case reflect.Struct:
		t := v.Type()
		if _, err := fmt.Fprintf(w, "%s{", t.Name()); err != nil {
			return err
		}
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).PkgPath != "" {
				continue
			}
			if _, err := io.WriteString(w, t.Field(i).Name+"="); err != nil {
				return err
			}
			if err := writeCanonical(w, v.Field(i)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "}")
		return err

	case reflect.Slice, reflect.Array:
		if _, err := fmt.Fprintf(w, "%d[", v.Len()); err != nil {
			return err
		}
		for i := 0; i < v.Len(); i++ {
			if err := writeCanonical(w, v.Index(i)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "]")
		return err

	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		if _, err := fmt.Fprintf(w, "%d{", v.Len()); err != nil {
			return err
		}
		for _, key := range keys {
			if err := writeCanonical(w, key); err != nil {
				return err
			}
			if _, err := io.WriteString(w, ":"); err != nil {
				return err
			}
			if err := writeCanonical(w, v.MapIndex(key)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "}")
		return err

	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		_, err := fmt.Fprintf(w, "%v;", v.Interface())
		return err

	default:
		return fmt.Errorf("cannot serialize value of kind %s", v.Kind())
	}
}

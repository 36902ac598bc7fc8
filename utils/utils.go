package utils

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mitchellh/hashstructure"
	"github.com/oklog/ulid"
	"github.com/spf13/cobra"
)

var (
	ulidMutex   = sync.Mutex{}
	ulidEntropy = ulid.Monotonic(rand.Reader, 0)
)

func Ternary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}

// ArrayContains returns the index of the first element matching the predicate
func ArrayContains[T any](set []T, match func(elem T) bool) (int, bool) {
	for idx, elem := range set {
		if match(elem) {
			return idx, true
		}
	}

	return -1, false
}

// ForEach runs the function over each element sequentially and stops on the first error
func ForEach[T any](set []T, action func(elem T) error) error {
	for _, elem := range set {
		if err := action(elem); err != nil {
			return err
		}
	}

	return nil
}

func IsValidSubcommand(available []*cobra.Command, sub string) bool {
	for _, s := range available {
		if sub == s.CalledAs() || sub == s.Name() {
			return true
		}
	}
	return false
}

// Unmarshal serializes and deserializes any from into the object
func Unmarshal(from, object any) error {
	reformatted, err := json.Marshal(from)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(reformatted, object); err != nil {
		return fmt.Errorf("failed to unmarshal into %T: %s", object, err)
	}

	return nil
}

// UnmarshalFile reads a JSON file into dest; validate runs dest's Validate() when available
func UnmarshalFile(file string, dest any, validate bool) error {
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", file)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("file not found: %s", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal file[%s]: %s", file, err)
	}

	if validate {
		if v, ok := dest.(interface{ Validate() error }); ok {
			return v.Validate()
		}
	}

	return nil
}

func IsFileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func ULID() string {
	ulidMutex.Lock()
	defer ulidMutex.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// TimestampedFileName returns a sortable unique file name with the given extension
func TimestampedFileName(extension string) string {
	return fmt.Sprintf("%s.%s", ULID(), strings.TrimPrefix(extension, "."))
}

// GetKeysHash returns a stable hash over the values of the given keys, or of the
// whole record when no keys are provided
func GetKeysHash(record map[string]any, keys ...string) string {
	values := record
	if len(keys) > 0 {
		values = make(map[string]any, len(keys))
		for _, key := range keys {
			values[key] = record[key]
		}
	}

	hash, err := hashstructure.Hash(values, nil)
	if err != nil {
		// unhashable kinds never come out of a JSON decoder; hash the printed form
		hash, _ = hashstructure.Hash(fmt.Sprint(values), nil)
	}

	return strconv.FormatUint(hash, 16)
}

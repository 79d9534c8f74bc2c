// Package guard flips the runtime into test mode when imported, so test
// binaries never start servers or background workers by accident.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("LABTRACK_TEST_MODE") == "" {
			_ = os.Setenv("LABTRACK_TEST_MODE", "1")
		}
	})
}

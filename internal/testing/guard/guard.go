// Package guard switches the binaries into test mode when imported by tests.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("SALESBOARD_TEST_MODE") == "" {
			_ = os.Setenv("SALESBOARD_TEST_MODE", "1")
		}
	})
}

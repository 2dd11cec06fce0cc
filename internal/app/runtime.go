package app

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"
)

// BILLING_TEST_MODE makes the binaries return before opening stores or
// listening, so packages importing them can be built and tested in isolation.
const testModeEnv = "BILLING_TEST_MODE"

var testMode struct {
	once sync.Once
	on   atomic.Bool
}

// InTestMode reports whether the application should skip runtime side effects.
func InTestMode() bool {
	testMode.once.Do(RefreshTestMode)
	return testMode.on.Load()
}

// RefreshTestMode re-reads BILLING_TEST_MODE after environment changes.
func RefreshTestMode() {
	on, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	testMode.on.Store(on)
}

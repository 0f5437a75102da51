package notify

import (
	"testing"

	"go.uber.org/goleak"
)

// Dispatch runs in goroutines; every test must leave none behind after Wait.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

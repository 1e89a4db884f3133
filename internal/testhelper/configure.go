package testhelper

import (
	"fmt"
	"os"
	"testing"

	reftxlog "gitlab.com/gitlab-org/reftx/internal/log"
)

// Run configures global test state, executes the given test suite and fails
// it if Goroutines are leaked by a suite which otherwise succeeded.
func Run(m *testing.M) {
	reftxlog.Configure(reftxlog.Loggers, "json", "panic")

	code := m.Run()
	if code == 0 {
		if err := findLeakedGoroutines(); err != nil {
			fmt.Printf("%s\n", err)
			code = 1
		}
	}

	os.Exit(code)
}

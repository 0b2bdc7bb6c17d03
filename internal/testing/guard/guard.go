// Package guard switches the process into test mode when imported, so a test
// that reaches main-like entry points never opens a terminal or a network
// listener.
package guard

import (
	"os"

	"github.com/odyssey-erp/odyssey-pos/internal/app"
)

func init() {
	if os.Getenv(app.TestModeEnv) != "" {
		return
	}
	_ = os.Setenv(app.TestModeEnv, "1")
	app.RefreshTestMode()
}

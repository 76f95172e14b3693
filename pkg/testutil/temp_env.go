package testutil

import "os"

// Setenv sets an environment variable for the duration of a test, and returns
// value.
func Setenv(c Cleanuper, name, value string) string {
	restoreEnv(c, name)
	os.Setenv(name, value)
	return value
}

// Unsetenv unsets an environment variable for the duration of a test.
func Unsetenv(c Cleanuper, name string) {
	restoreEnv(c, name)
	os.Unsetenv(name)
}

func restoreEnv(c Cleanuper, name string) {
	old, existed := os.LookupEnv(name)
	c.Cleanup(func() {
		if existed {
			os.Setenv(name, old)
		} else {
			os.Unsetenv(name)
		}
	})
}

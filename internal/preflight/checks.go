package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"n8nexplorer/internal/n8n"
	"n8nexplorer/internal/settings"
)

// CheckN8N verifies that the instance is reachable and the API key is accepted.
func CheckN8N(ctx context.Context, tester settings.ConnectionTester, creds settings.Credentials, timeout time.Duration) Result {
	const name = "n8n API"

	if creds.BaseURL == "" {
		return Result{Name: name, Detail: "missing url (run 'n8nexplorer login')"}
	}
	if creds.APIKey == "" {
		return Result{Name: name, Detail: "missing api key (run 'n8nexplorer login')"}
	}
	if tester == nil {
		return Result{Name: name, Detail: "no connection tester configured"}
	}

	if err := tester.TestConnection(ctx, creds.BaseURL, creds.APIKey, timeout); err != nil {
		if fetchErr, ok := n8n.AsFetchError(err); ok {
			return Result{Name: name, Detail: fmt.Sprintf("%s (%s)", creds.BaseURL, fetchErr.Hint())}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", creds.BaseURL, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable, key accepted)", creds.BaseURL)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

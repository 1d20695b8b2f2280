package health

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

type Check struct {
	Name  string
	Check func(context.Context, bool) (int, string, error)
}

type result struct {
	status  int
	message string
	err     error
}

// CheckAll runs checks concurrently and reports 200 only when every check does.
// Dependencies are listed in the order of checks.
func CheckAll(ctx context.Context, checkLiveness bool, checks []Check) (int, string, error) {
	results := make([]result, len(checks))

	g, gCtx := errgroup.WithContext(ctx)

	for i, check := range checks {
		g.Go(func() error {
			status, message, err := check.Check(gCtx, checkLiveness)
			results[i] = result{status: status, message: message, err: err}

			return nil
		})
	}

	_ = g.Wait()

	overallStatus := http.StatusOK
	messages := make([]string, 0, len(checks))

	for i, check := range checks {
		r := results[i]

		if r.err != nil || r.status != http.StatusOK {
			overallStatus = http.StatusServiceUnavailable
		}

		if len(r.message) > 0 && r.message[0] == '{' && r.message[len(r.message)-1] == '}' {
			messages = append(messages, fmt.Sprintf(`{"resource": "%s", "status": "%d", "error": "%v", "dependencies": [%s]}`, check.Name, r.status, r.err, r.message))
		} else {
			messages = append(messages, fmt.Sprintf(`{"resource": "%s", "status": "%d", "error": "%v", "message": "%s"}`, check.Name, r.status, r.err, r.message))
		}
	}

	return overallStatus, fmt.Sprintf(`{"status":"%d", "dependencies":[%s]}`, overallStatus, strings.Join(messages, ",\n")), nil
}

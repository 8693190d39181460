// Package lint implements the core logic for linting a set of Jenkinsfiles.
package lint

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/thought-machine/jflint/src/cli/logging"
	"github.com/thought-machine/jflint/src/jenkins"
)

var log = logging.Log

// Lint validates each of the given files against the server and writes one
// line per finding to out, in input file order regardless of parallelism.
// It returns true only if every file came back clean. Per-file failures (an
// unreadable file, an unreachable server) are logged and fold into the return
// value without stopping the remaining files.
func Lint(client *jenkins.Client, files []string, parallelism int, out io.Writer) bool {
	results := make([]*jenkins.Result, len(files))
	errs := make([]error, len(files))
	if parallelism < 1 {
		parallelism = 1
	}
	var g errgroup.Group
	g.SetLimit(parallelism)
	for i, file := range files {
		i, file := i, file // capture locally
		g.Go(func() error {
			results[i], errs[i] = lintFile(client, file)
			return nil
		})
	}
	_ = g.Wait() // the goroutines above never return an error
	ok := true
	var failures *multierror.Error
	for i, result := range results {
		if errs[i] != nil {
			failures = multierror.Append(failures, errs[i])
			ok = false
			continue
		}
		for _, diag := range result.Diagnostics {
			fmt.Fprintln(out, diag)
		}
		ok = ok && result.OK
	}
	if err := failures.ErrorOrNil(); err != nil {
		log.Error("%s", err)
	}
	return ok
}

func lintFile(client *jenkins.Client, file string) (*jenkins.Result, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	log.Debug("Linting %s...", file)
	return client.Lint(file, content)
}

// Package main implements jflint, a linter for Jenkins declarative pipeline
// files. It submits each Jenkinsfile to the validation endpoint of a running
// Jenkins server and reports the findings; the actual pipeline parsing all
// happens server-side.
package main

import (
	"os"
	"time"

	"github.com/thought-machine/jflint/src/cli"
	logger "github.com/thought-machine/jflint/src/cli/logging"
	"github.com/thought-machine/jflint/src/config"
	"github.com/thought-machine/jflint/src/jenkins"
	"github.com/thought-machine/jflint/src/lint"
)

var log = logger.Log

var opts = struct {
	Usage    string
	Config   cli.Filepath `short:"c" long:"config" description:"Alternative configuration file"`
	Profile  string       `short:"p" long:"profile" default:"default" description:"Configuration profile to use for linting"`
	Insecure bool         `short:"k" long:"insecure" description:"Disable TLS certificate checks"`
	Timeout  cli.Duration `short:"t" long:"timeout" default:"30s" description:"Timeout for reading data from the Jenkins instance"`
	Debug    bool         `short:"d" long:"debug" description:"Print debugging information"`
	Jobs     int          `short:"j" long:"jobs" default:"1" description:"Maximum number of files to lint concurrently"`
	Args     struct {
		Jenkinsfiles []cli.Filepath `positional-arg-name:"jenkinsfile" required:"true" description:"Path to a Jenkinsfile to lint"`
	} `positional-args:"true" required:"true"`
}{
	Usage: `
jflint validates Jenkins declarative pipeline files by submitting them to the
pipeline linter built into a running Jenkins server.

Server connection details come from an INI-style configuration file with one
[profile "<name>"] section per server (./.jflintrc, or jflintrc in the user
config directory), or from the JENKINS_URL, JENKINS_USERNAME and
JENKINS_PASSWORD environment variables; the environment wins when JENKINS_URL
is set. Findings are printed one per line as file:line:column: error: message.
The exit code is 0 if every file is valid and 1 otherwise.
`,
}

func main() {
	cli.ParseFlagsOrDie("jflint", &opts)
	verbosity := cli.MinVerbosity
	if opts.Debug {
		verbosity = cli.MaxVerbosity
	}
	cli.InitLogging(verbosity)

	profile, err := config.Resolve(string(opts.Config), opts.Profile)
	if err != nil {
		log.Fatalf("%s", err)
	}
	client, err := jenkins.NewClient(profile, time.Duration(opts.Timeout), opts.Insecure)
	if err != nil {
		log.Fatalf("%s", err)
	}
	if !lint.Lint(client, cli.Filepaths(opts.Args.Jenkinsfiles).AsStrings(), opts.Jobs, os.Stdout) {
		os.Exit(1)
	}
}

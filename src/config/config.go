// Utilities for reading the jflint config files and resolving Jenkins profiles.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/please-build/gcfg"

	"github.com/thought-machine/jflint/src/cli"
	logger "github.com/thought-machine/jflint/src/cli/logging"
)

var log = logger.Log

// DefaultProfile is the profile used when none is requested explicitly.
const DefaultProfile = "default"

// ConfigFileName is the project-local config file, typically checked in next to
// the Jenkinsfiles it covers.
const ConfigFileName = ".jflintrc"

// UserConfigFileName is the per-user config file, relative to the user's config directory.
const UserConfigFileName = "jflintrc"

// Environment variables recognised for profile resolution. When EnvURL is set
// the config files are not consulted at all.
const (
	EnvURL      = "JENKINS_URL"
	EnvUsername = "JENKINS_USERNAME"
	EnvPassword = "JENKINS_PASSWORD"
)

// A Profile holds the connection details for a single Jenkins server.
type Profile struct {
	Name     string
	URL      cli.URL
	Username string
	Password string
}

// A File mirrors the on-disk config layout; one section per server, e.g.
//
//	[profile "staging"]
//	url = https://jenkins.staging.example.com
//	username = lint
//	password = hunter2
type File struct {
	Profile map[string]*Profile
}

// An Error is returned for any failure to resolve a usable profile.
// It aborts the run before any lint request is made.
type Error struct {
	msg string
}

// Error implements the error interface.
func (err *Error) Error() string {
	return err.msg
}

func configError(format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Resolve produces the effective profile for the given name.
// Resolution is an ordered chain, first hit wins: the environment variables,
// then the explicitly given config file, then the project-local file, then the
// user-global one.
func Resolve(configPath, name string) (*Profile, error) {
	if profile, err := fromEnvironment(name); profile != nil || err != nil {
		return profile, err
	}
	return fromFiles(configPath, name)
}

// fromEnvironment builds a profile from the JENKINS_* environment variables.
// It returns nil if JENKINS_URL isn't set.
func fromEnvironment(name string) (*Profile, error) {
	url := os.Getenv(EnvURL)
	if url == "" {
		return nil, nil
	}
	log.Debug("Loading configuration from environment variables")
	profile := &Profile{
		Name:     name,
		Username: os.Getenv(EnvUsername),
		Password: os.Getenv(EnvPassword),
	}
	if err := profile.URL.UnmarshalFlag(url); err != nil {
		return nil, configError("Invalid %s %s: %s", EnvURL, url, err)
	}
	return profile, nil
}

// fromFiles reads the profile from the first config file that exists.
func fromFiles(configPath, name string) (*Profile, error) {
	paths := candidatePaths(configPath)
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return readProfile(path, name)
	}
	return nil, configError("Unable to load configuration file %s", strings.Join(paths, " or "))
}

func candidatePaths(configPath string) []string {
	if configPath != "" {
		return []string{configPath}
	}
	paths := []string{ConfigFileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, UserConfigFileName))
	}
	return paths
}

func readProfile(path, name string) (*Profile, error) {
	log.Debug("Reading config from %s...", path)
	file := &File{}
	if err := gcfg.ReadFileInto(file, path); err != nil {
		return nil, configError("Failed to read configuration file %s: %s", path, err)
	}
	profile, present := file.Profile[name]
	if !present {
		return nil, configError("Missing profile `%s` in configuration file %s", name, path)
	}
	if profile.URL == "" {
		return nil, configError("Missing `url` key for profile `%s` in configuration file %s", name, path)
	}
	profile.Name = name
	return profile, nil
}

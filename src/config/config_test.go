package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDefaultProfile(t *testing.T) {
	profile, err := Resolve("test_data/working.jflintrc", DefaultProfile)
	assert.NoError(t, err)
	assert.Equal(t, "default", profile.Name)
	assert.Equal(t, "https://jenkins.example.com", profile.URL.String())
	assert.Equal(t, "lint", profile.Username)
	assert.Equal(t, "hunter2", profile.Password)
}

func TestResolveNamedProfile(t *testing.T) {
	profile, err := Resolve("test_data/working.jflintrc", "staging")
	assert.NoError(t, err)
	assert.Equal(t, "https://jenkins.staging.example.com", profile.URL.String())
	// Credentials are optional per profile.
	assert.Equal(t, "", profile.Username)
	assert.Equal(t, "", profile.Password)
}

func TestMissingProfile(t *testing.T) {
	_, err := Resolve("test_data/working.jflintrc", "production")
	assert.Error(t, err)
	assert.IsType(t, &Error{}, err)
	assert.Contains(t, err.Error(), "production")
	assert.Contains(t, err.Error(), "test_data/working.jflintrc")
}

func TestMissingURLKey(t *testing.T) {
	_, err := Resolve("test_data/nourl.jflintrc", DefaultProfile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "url")
	assert.Contains(t, err.Error(), "default")
	assert.Contains(t, err.Error(), "test_data/nourl.jflintrc")
}

func TestMissingFile(t *testing.T) {
	_, err := Resolve("test_data/doesnotexist.jflintrc", DefaultProfile)
	assert.Error(t, err)
	assert.IsType(t, &Error{}, err)
	assert.Contains(t, err.Error(), "test_data/doesnotexist.jflintrc")
}

func TestEnvironmentWinsOverFiles(t *testing.T) {
	t.Setenv(EnvURL, "https://jenkins.env.example.com")
	t.Setenv(EnvUsername, "envuser")
	t.Setenv(EnvPassword, "envpass")
	profile, err := Resolve("test_data/working.jflintrc", DefaultProfile)
	assert.NoError(t, err)
	assert.Equal(t, "https://jenkins.env.example.com", profile.URL.String())
	assert.Equal(t, "envuser", profile.Username)
	assert.Equal(t, "envpass", profile.Password)
}

func TestEnvironmentWithoutCredentials(t *testing.T) {
	t.Setenv(EnvURL, "https://jenkins.env.example.com")
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")
	// No config file needed at all when the URL comes from the environment.
	profile, err := Resolve("", DefaultProfile)
	assert.NoError(t, err)
	assert.Equal(t, "https://jenkins.env.example.com", profile.URL.String())
	assert.Equal(t, "", profile.Username)
}

func TestMain(m *testing.M) {
	// Make sure ambient Jenkins credentials can't interfere with the file tests.
	for _, v := range []string{EnvURL, EnvUsername, EnvPassword} {
		os.Unsetenv(v)
	}
	os.Exit(m.Run())
}

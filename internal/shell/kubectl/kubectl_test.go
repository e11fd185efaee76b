package kubectl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortForwardArgs(t *testing.T) {
	args := portForwardArgs("kindstack", "deployment/api", 8080, 8080, "kind-dev")

	assert.Equal(t, []string{
		"port-forward", "deployment/api",
		"8080:8080",
		"--namespace", "kindstack",
		"--context", "kind-dev",
	}, args)
}

func TestPortForwardArgsDistinctPorts(t *testing.T) {
	args := portForwardArgs("kindstack", "deployment/frontend", 13000, 3000, "kind-dev")
	assert.Contains(t, args, "13000:3000")
}

func TestErrorFormat(t *testing.T) {
	t.Run("with output", func(t *testing.T) {
		err := NewError("PortForward", "deployment/api", "unable to listen on port 8080\n", errors.New("exit status 1"))
		assert.Equal(t, "PortForward deployment/api: unable to listen on port 8080", err.Error())
	})

	t.Run("without output", func(t *testing.T) {
		err := NewError("Version", "client", "", ErrKubectlNotFound)
		assert.Equal(t, "Version client: kubectl binary not found", err.Error())
		assert.True(t, errors.Is(err, ErrKubectlNotFound))
	})
}

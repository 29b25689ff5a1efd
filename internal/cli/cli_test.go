package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func newTestCommand(run func() error) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})
	return cmd, &out
}

func TestExecuteSuccess(t *testing.T) {
	ran := false
	cmd, _ := newTestCommand(func() error {
		ran = true
		return nil
	})

	assert.Equal(t, 0, Execute(cmd))
	assert.True(t, ran)
}

func TestExecuteFailure(t *testing.T) {
	cmd, out := newTestCommand(func() error {
		return errors.New("boom")
	})

	assert.Equal(t, 1, Execute(cmd))
	assert.Contains(t, out.String(), "boom")
}

func TestExecuteUnknownFlag(t *testing.T) {
	cmd, out := newTestCommand(func() error { return nil })
	cmd.SetArgs([]string{"--no-such-flag"})

	assert.Equal(t, 1, Execute(cmd))
	assert.Contains(t, out.String(), "unknown flag")
}

func TestExecuteProvidesContext(t *testing.T) {
	cmd, _ := newTestCommand(func() error { return nil })
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Context() == nil {
			return errors.New("missing context")
		}
		return cmd.Context().Err()
	}

	assert.Equal(t, 0, Execute(cmd))
}

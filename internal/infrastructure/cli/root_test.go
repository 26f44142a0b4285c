package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/doeshing/recogaize/internal/app"
)

func TestVersionSkipsContainer(t *testing.T) {
	built := false
	root := NewRootCmd(Options{}, func(*cobra.Command, app.Options) (*app.Container, error) {
		built = true
		return &app.Container{}, nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if built {
		t.Fatal("container built for version")
	}
	if !strings.Contains(out.String(), "recogaize version") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestGlobalFlagsReachBuilder(t *testing.T) {
	var got app.Options
	root := NewRootCmd(Options{}, func(_ *cobra.Command, opts app.Options) (*app.Container, error) {
		got = opts
		return nil, errors.New("stop")
	})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--api-url", "http://example.test/api", "--log-level", "debug", "health"})

	err := root.ExecuteContext(context.Background())
	if err == nil || err.Error() != "stop" {
		t.Fatalf("Execute() error = %v, want stop", err)
	}
	if got.APIURL != "http://example.test/api" || got.LogLevel != "debug" {
		t.Fatalf("options = %+v", got)
	}
}

// Package cli implements the webvalve command, which shows how registered services resolve in the current environment.
package cli

import (
	"fmt"
	"io"

	"github.com/areknoster/webvalve"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/areknoster/webvalve/internal/cli.Version=...".
var Version = "dev"

type rootOptions struct {
	file      string
	mode      string
	logLevel  string
	logFormat string
}

// Execute runs the webvalve command against the process environment.
func Execute(args []string, out, errOut io.Writer) error {
	root := newRootCmd(webvalve.OSEnv{})
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.Execute()
}

func newRootCmd(env webvalve.Env) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "webvalve",
		Short:         "Inspect which external services are faked in the current environment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	fs := cmd.PersistentFlags()
	fs.StringVarP(&opts.file, "file", "f", "webvalve.yaml", "registration file path")
	fs.StringVar(&opts.mode, "mode", "", "override the mode of the registration file (auto, enabled, disabled)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format (text or json)")

	cmd.AddCommand(newStatusCmd(env, opts))
	cmd.AddCommand(newRoutesCmd(env, opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func loadRegistry(cmd *cobra.Command, env webvalve.Env, opts *rootOptions) (*webvalve.Registry, error) {
	logger := webvalve.NewLogger(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
	cfg, err := webvalve.LoadFile(opts.file)
	if err != nil {
		return nil, err
	}
	if opts.mode != "" {
		cfg.Mode = opts.mode
	}
	reg := webvalve.NewRegistry(
		webvalve.WithEnv(env),
		webvalve.WithLogger(logger),
	)
	if err := reg.Apply(cfg, nil); err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"file":     opts.file,
		"services": len(cfg.Services),
		"mode":     reg.Mode().String(),
	}).Debug("registration file loaded")
	return reg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}

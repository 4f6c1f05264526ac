package cli

import (
	"fmt"

	"github.com/areknoster/webvalve"
	"github.com/spf13/cobra"
)

func newRoutesCmd(env webvalve.Env, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the routes an interception layer would install",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cmd, env, opts)
			if err != nil {
				return err
			}
			routes, err := reg.Routes()
			if err != nil {
				return err
			}
			for _, r := range routes {
				matcher := "any"
				if r.RequestMatcher != nil {
					matcher = fmt.Sprintf("%+v", r.RequestMatcher)
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s prefix=%s match=%s\n", r.ClassName, r.FullURL, r.PathPrefix, matcher); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

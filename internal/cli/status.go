package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/areknoster/webvalve"
	"github.com/spf13/cobra"
)

func newStatusCmd(env webvalve.Env, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the toggle, decision and URL of every registered service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cmd, env, opts)
			if err != nil {
				return err
			}
			statuses := reg.Statuses()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "mode: %s\n", reg.Mode())
			fmt.Fprintln(tw, "CLASS\tSERVICE\tTOGGLE\tFAKED\tURL\tPREFIX")
			for _, st := range statuses {
				url, prefix := st.FullURL, st.PathPrefix
				if st.Err != nil {
					url, prefix = "-", "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n", st.ClassName, st.ServiceName, st.Toggle, st.Enabled, url, prefix)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, st := range statuses {
				if st.Err != nil && st.Enabled {
					fmt.Fprintln(cmd.ErrOrStderr(), strings.TrimRight(st.Err.Error(), "\n"))
				}
			}
			return nil
		},
	}
}

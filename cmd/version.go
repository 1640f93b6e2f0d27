package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dogi/pISO/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build identity",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.GetVersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"fmt"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the drives in the pool",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry(cmd.Context())
		if err != nil {
			return err
		}
		drives := reg.Drives()
		if len(drives) == 0 {
			fmt.Println(dimStyle.Render("no drives"))
			return nil
		}
		fmt.Println(headingStyle.Render(fmt.Sprintf("%-16s %10s  %s", "NAME", "SIZE", "ID")))
		for _, d := range drives {
			fmt.Printf("%-16s %10s  %s\n", d.Name, datasize.ByteSize(d.Capacity).HR(), d.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

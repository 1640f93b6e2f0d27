package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dogi/pISO/internal/vdrive"
)

var rmCmd = &cobra.Command{
	Use:   "rm <name|id>",
	Short: "Delete a drive and return its space to the pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry(cmd.Context())
		if err != nil {
			return err
		}

		target := args[0]
		info, ok := reg.FindByName(target)
		if !ok {
			for _, d := range reg.Drives() {
				if string(d.ID) == target {
					info, ok = d, true
					break
				}
			}
		}
		if !ok {
			return errors.Wrapf(vdrive.ErrNotFound, "drive %q", target)
		}

		if err := reg.RemoveDrive(cmd.Context(), info.ID); err != nil {
			return err
		}
		fmt.Println(okStyle.Render("removed " + info.Name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

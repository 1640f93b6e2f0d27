package cmd

import (
	"fmt"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"
)

var (
	addSize = newSizeValue(0)
	addName string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a drive in the pool",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		size := addSize.Bytes()
		if size == 0 {
			var err error
			size, err = cfg.SizeStepBytes()
			if err != nil {
				return err
			}
		}

		reg, err := openRegistry(cmd.Context())
		if err != nil {
			return err
		}
		info, err := reg.AddDrive(cmd.Context(), addName, size)
		if err != nil {
			return err
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("created %s (%s)", info.Name, datasize.ByteSize(info.Capacity).HR())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().Var(addSize, "size", "drive size, e.g. 2GB (default: size_step)")
	addCmd.Flags().StringVar(&addName, "name", "", "volume name (default: next free vdriveN)")
}

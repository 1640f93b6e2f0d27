package cmd

import (
	"fmt"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dogi/pISO/internal/gadget"
	"github.com/dogi/pISO/internal/sysinfo"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pool, gadget and host state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reg, err := openRegistry(ctx)
		if err != nil {
			return err
		}

		fmt.Println(headingStyle.Render("pool"))
		fmt.Printf("  volume group  %s/%s\n", cfg.VolumeGroup, cfg.ThinPool)
		fmt.Printf("  drives        %d\n", reg.Len())
		fmt.Printf("  capacity      %s total, %s free (%.0f%% used)\n",
			datasize.ByteSize(reg.TotalCapacity()).HR(),
			datasize.ByteSize(reg.FreeCapacity()).HR(),
			reg.PercentUsed())

		fmt.Println(headingStyle.Render("usb"))
		ms := gadget.NewMassStorage(gadgetConfig(), log.Logger)
		if udc, err := ms.Bound(); err != nil {
			fmt.Println("  gadget        " + dimStyle.Render("not present"))
		} else if udc == "" {
			fmt.Println("  gadget        " + warnStyle.Render("not bound"))
		} else {
			fmt.Println("  gadget        " + okStyle.Render("bound to "+udc))
		}

		snap := sysinfo.Collect(ctx)
		fmt.Println(headingStyle.Render("host"))
		fmt.Printf("  uptime        %s\n", snap.Uptime.Round(time.Second))
		fmt.Printf("  load          %.2f\n", snap.Load1)
		fmt.Printf("  memory        %.0f%% used\n", snap.MemUsedPercent)
		fmt.Printf("  rootfs        %.0f%% used\n", snap.RootFSUsedPercent)
		if snap.CPUTempC > 0 {
			fmt.Printf("  cpu temp      %.0fC\n", snap.CPUTempC)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

package cmd

import (
	"github.com/c2h5oh/datasize"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dogi/pISO/internal/ui"
	"github.com/dogi/pISO/internal/vdrive"
)

var (
	simPoolSize = newSizeValue((8 * datasize.GB).Bytes())
	simDrives   int
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run the panel simulator in the terminal",
	Long: `sim runs the device menu against an in-memory pool. Frames are
rendered with half-block runes, so the terminal shows exactly what the
OLED would. No root, LVM or hardware needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		step, err := cfg.SizeStepBytes()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pool := vdrive.NewMemoryPool(simPoolSize.Bytes())
		for i := 0; i < simDrives; i++ {
			if _, err := pool.Allocate(ctx, "", step); err != nil {
				return errors.Wrap(err, "seeding simulator pool")
			}
		}

		// Log lines would tear the alternate screen.
		m, err := ui.NewSim(ctx, pool, step, zerolog.Nop())
		if err != nil {
			return err
		}
		_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(simCmd)
	simCmd.Flags().Var(simPoolSize, "pool-size", "capacity of the simulated pool")
	simCmd.Flags().IntVar(&simDrives, "drives", 2, "drives pre-created in the simulated pool")
}

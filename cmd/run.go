package cmd

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dogi/pISO/internal/display"
	"github.com/dogi/pISO/internal/gadget"
	"github.com/dogi/pISO/internal/input"
	"github.com/dogi/pISO/internal/lvm"
	"github.com/dogi/pISO/internal/ui"
	"github.com/dogi/pISO/internal/vdrive"
)

// lockFilePath is the singleton lock for the device daemon.
var lockFilePath = "/run/piso.lock"

// requiredTools are the LVM binaries the pool shells out to.
var requiredTools = []string{"lvs", "vgs", "lvcreate", "lvremove"}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the device: panel, buttons and USB export",
	Args:  cobra.NoArgs,
	RunE:  runDevice,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDevice(cmd *cobra.Command, args []string) error {
	if os.Geteuid() != 0 {
		return errors.New("run needs root for LVM and the gadget tree")
	}
	if err := checkSingleInstance(); err != nil {
		return err
	}
	if err := createInstanceLock(); err != nil {
		return errors.Wrap(err, "instance lock")
	}
	defer removeInstanceLock()
	if err := checkSystemTools(); err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Gadget.ConfigFS); err != nil {
		return errors.Wrap(err, "usb gadget configfs not available")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pool := lvm.New(cfg.VolumeGroup, cfg.ThinPool, log.Logger)

	fb, err := display.OpenFramebuffer(cfg.Display.Device, cfg.Display.Width, cfg.Display.Height, cfg.Display.Depth)
	if err != nil {
		return errors.Wrap(err, "opening panel")
	}
	defer fb.Close()

	buttons, err := input.OpenEvdev(cfg.Input.Device, input.Keymap{
		Up:     cfg.Input.UpKey,
		Down:   cfg.Input.DownKey,
		Select: cfg.Input.SelectKey,
	}, log.Logger)
	if err != nil {
		return errors.Wrap(err, "opening buttons")
	}
	defer buttons.Close()

	ms := gadget.NewMassStorage(gadgetConfig(), log.Logger)
	if err := ms.Create(); err != nil {
		return errors.Wrap(err, "creating usb gadget")
	}

	step, err := cfg.SizeStepBytes()
	if err != nil {
		return err
	}
	picker := ui.NewStepPicker(fb, buttons.Events(), display.Font5x7{}, step)

	// The loop owns the toggle action but is built after the registry.
	var loop *ui.Loop
	action := func(ctx context.Context, d vdrive.Info) (bool, error) {
		return loop.ToggleExport(ctx, d)
	}
	reg, err := vdrive.NewRegistry(ctx, pool, vdrive.Options{
		Picker: picker,
		Action: action,
		Logger: log.Logger,
	})
	if err != nil {
		return err
	}

	loop, err = ui.NewLoop(ui.LoopConfig{
		Registry:    reg,
		Device:      fb,
		Events:      buttons.Events(),
		Exporter:    ms,
		DevPath:     func(d vdrive.Info) string { return pool.DevicePath(d.Name) },
		RescanEvery: cfg.RescanEvery,
		Logger:      log.Logger,
	})
	if err != nil {
		return err
	}

	sigc := make(chan os.Signal, 2)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		for sig := range sigc {
			if sig == syscall.SIGHUP {
				loop.RequestRescan()
				continue
			}
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			cancel()
			return
		}
	}()

	log.Info().
		Str("volume_group", cfg.VolumeGroup).
		Str("thin_pool", cfg.ThinPool).
		Int("drives", reg.Len()).
		Msg("piso running")
	return loop.Run(ctx)
}

// checkSingleInstance reports an error while another live instance holds
// the lock. A lock left by a dead process is removed.
func checkSingleInstance() error {
	content, err := os.ReadFile(lockFilePath)
	if err != nil {
		return nil
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err == nil && pid > 0 {
		if proc, err := os.FindProcess(pid); err == nil {
			if proc.Signal(syscall.Signal(0)) == nil {
				return errors.Errorf("another piso instance is running (pid %d)", pid)
			}
		}
	}
	os.Remove(lockFilePath)
	return nil
}

func createInstanceLock() error {
	return os.WriteFile(lockFilePath, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func removeInstanceLock() {
	os.Remove(lockFilePath)
}

func checkSystemTools() error {
	var missing []string
	for _, tool := range requiredTools {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required tools: %s (install lvm2)", strings.Join(missing, ", "))
	}
	return nil
}

// Package lvm backs the drive registry with an LVM thin pool. Volumes are
// thin logical volumes; all state lives in LVM itself and every operation
// shells out to the lvm2 tools, so the registry can always be rebuilt from
// what lvs reports.
package lvm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dogi/pISO/internal/vdrive"
)

type runCommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// VolumeGroup exposes one LVM volume group, with its thin pool, as a
// vdrive.Pool.
type VolumeGroup struct {
	name     string
	thinpool string
	log      zerolog.Logger
	run      runCommandFunc
}

var _ vdrive.Pool = (*VolumeGroup)(nil)

// New returns a pool over the given volume group and thin pool name.
func New(name, thinpool string, log zerolog.Logger) *VolumeGroup {
	return &VolumeGroup{
		name:     name,
		thinpool: thinpool,
		log:      log,
		run:      runCommand,
	}
}

// Name returns the volume group name.
func (vg *VolumeGroup) Name() string { return vg.name }

// DevicePath returns the device node for a volume, e.g. /dev/piso/vdrive0.
func (vg *VolumeGroup) DevicePath(name string) string {
	return filepath.Join("/dev", vg.name, name)
}

// Volumes lists the thin volumes in the pool. A volume whose size does not
// parse is reported with size zero so the registry can skip it as corrupt
// instead of the whole listing failing.
func (vg *VolumeGroup) Volumes(ctx context.Context) ([]vdrive.Volume, error) {
	rows, err := vg.listLVs(ctx)
	if err != nil {
		return nil, err
	}
	vols := make([]vdrive.Volume, 0, len(rows))
	for _, lv := range rows {
		if lv.VGName != vg.name || lv.PoolLV != vg.thinpool {
			continue
		}
		size, err := parseBytes(lv.Size)
		if err != nil {
			vg.log.Warn().Str("volume", lv.Name).Str("size", lv.Size).Msg("unreadable volume size")
			size = 0
		}
		vols = append(vols, vdrive.Volume{
			ID:   vdrive.VolumeID(lv.UUID),
			Name: lv.Name,
			Size: size,
		})
	}
	return vols, nil
}

// TotalCapacity returns the volume group size in bytes.
func (vg *VolumeGroup) TotalCapacity(ctx context.Context) (uint64, error) {
	report, err := vg.report(ctx)
	if err != nil {
		return 0, err
	}
	size, err := parseBytes(report.Size)
	if err != nil {
		return 0, errors.Wrapf(vdrive.ErrPoolUnavailable, "vg size %q: %v", report.Size, err)
	}
	return size, nil
}

// RemainingCapacity returns the volume group's free bytes.
func (vg *VolumeGroup) RemainingCapacity(ctx context.Context) (uint64, error) {
	report, err := vg.report(ctx)
	if err != nil {
		return 0, err
	}
	free, err := parseBytes(report.Free)
	if err != nil {
		return 0, errors.Wrapf(vdrive.ErrPoolUnavailable, "vg free %q: %v", report.Free, err)
	}
	return free, nil
}

// Allocate creates a thin volume and returns it as reported by lvs
// afterwards, so the caller sees the size LVM actually settled on.
func (vg *VolumeGroup) Allocate(ctx context.Context, name string, size uint64) (vdrive.Volume, error) {
	if name == "" {
		var err error
		name, err = vg.nextName(ctx)
		if err != nil {
			return vdrive.Volume{}, err
		}
	}
	_, err := vg.run(ctx, "lvcreate",
		"-V", fmt.Sprintf("%dB", size),
		"-T", vg.name+"/"+vg.thinpool,
		"-n", name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "insufficient free space") {
			return vdrive.Volume{}, errors.Wrapf(vdrive.ErrInsufficientSpace, "%v", err)
		}
		return vdrive.Volume{}, errors.Wrapf(vdrive.ErrPoolUnavailable, "%v", err)
	}
	vg.log.Info().Str("volume", name).Uint64("size", size).Msg("created thin volume")

	vols, err := vg.Volumes(ctx)
	if err != nil {
		return vdrive.Volume{}, err
	}
	for _, v := range vols {
		if v.Name == name {
			return v, nil
		}
	}
	return vdrive.Volume{}, errors.Wrapf(vdrive.ErrPoolUnavailable, "volume %s not visible after lvcreate", name)
}

// Free removes the volume with the given id.
func (vg *VolumeGroup) Free(ctx context.Context, id vdrive.VolumeID) error {
	vols, err := vg.Volumes(ctx)
	if err != nil {
		return err
	}
	name := ""
	for _, v := range vols {
		if v.ID == id {
			name = v.Name
			break
		}
	}
	if name == "" {
		return errors.Wrapf(vdrive.ErrNotFound, "no volume with id %s", id)
	}
	if _, err := vg.run(ctx, "lvremove", "-f", vg.name+"/"+name); err != nil {
		return errors.Wrapf(vdrive.ErrPoolUnavailable, "%v", err)
	}
	vg.log.Info().Str("volume", name).Msg("removed thin volume")
	return nil
}

// nextName picks the first unused vdriveN name.
func (vg *VolumeGroup) nextName(ctx context.Context) (string, error) {
	vols, err := vg.Volumes(ctx)
	if err != nil {
		return "", err
	}
	taken := make(map[string]struct{}, len(vols))
	for _, v := range vols {
		taken[v.Name] = struct{}{}
	}
	for i := 0; ; i++ {
		name := fmt.Sprintf("vdrive%d", i)
		if _, ok := taken[name]; !ok {
			return name, nil
		}
	}
}

func (vg *VolumeGroup) listLVs(ctx context.Context) ([]logicalVolumeReport, error) {
	out, err := vg.run(ctx, "lvs", "--verbose", "--report-format=json", "--units=B")
	if err != nil {
		return nil, errors.Wrapf(vdrive.ErrPoolUnavailable, "%v", err)
	}
	rows, err := parseLVs(out)
	if err != nil {
		return nil, errors.Wrapf(vdrive.ErrPoolUnavailable, "%v", err)
	}
	return rows, nil
}

func (vg *VolumeGroup) report(ctx context.Context) (volumeGroupReport, error) {
	out, err := vg.run(ctx, "vgs", "--verbose", "--report-format=json", "--units=B")
	if err != nil {
		return volumeGroupReport{}, errors.Wrapf(vdrive.ErrPoolUnavailable, "%v", err)
	}
	rows, err := parseVGs(out)
	if err != nil {
		return volumeGroupReport{}, errors.Wrapf(vdrive.ErrPoolUnavailable, "%v", err)
	}
	for _, row := range rows {
		if row.Name == vg.name {
			return row, nil
		}
	}
	return volumeGroupReport{}, errors.Wrapf(vdrive.ErrPoolUnavailable, "volume group %s not reported by vgs", vg.name)
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.Errorf("%s: %s", name, msg)
	}
	return stdout.Bytes(), nil
}

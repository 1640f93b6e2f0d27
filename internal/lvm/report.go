package lvm

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// The lvm2 tools emit one report object per invocation, with the rows
// keyed by report type. Sizes arrive as strings like "4194304B" because
// they are produced for humans first.

type lvsOutput struct {
	Report []struct {
		LV []logicalVolumeReport `json:"lv"`
	} `json:"report"`
}

type logicalVolumeReport struct {
	Name   string `json:"lv_name"`
	VGName string `json:"vg_name"`
	UUID   string `json:"lv_uuid"`
	Attr   string `json:"lv_attr"`
	Size   string `json:"lv_size"`
	PoolLV string `json:"pool_lv"`
	Origin string `json:"origin"`
}

type vgsOutput struct {
	Report []struct {
		VG []volumeGroupReport `json:"vg"`
	} `json:"report"`
}

type volumeGroupReport struct {
	Name       string `json:"vg_name"`
	Attr       string `json:"vg_attr"`
	Size       string `json:"vg_size"`
	Free       string `json:"vg_free"`
	ExtentSize string `json:"vg_extent_size"`
	UUID       string `json:"vg_uuid"`
}

func parseLVs(out []byte) ([]logicalVolumeReport, error) {
	var parsed lvsOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, errors.Wrap(err, "parsing lvs json")
	}
	if len(parsed.Report) == 0 {
		return nil, errors.New("lvs json carries no report")
	}
	return parsed.Report[0].LV, nil
}

func parseVGs(out []byte) ([]volumeGroupReport, error) {
	var parsed vgsOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, errors.Wrap(err, "parsing vgs json")
	}
	if len(parsed.Report) == 0 {
		return nil, errors.New("vgs json carries no report")
	}
	return parsed.Report[0].VG, nil
}

// parseBytes reads an lvm size string, tolerating the unit suffix that
// --units=B appends.
func parseBytes(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "B")
	s = strings.TrimSuffix(s, "b")
	if s == "" {
		return 0, errors.New("empty size string")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing size %q", s)
	}
	return n, nil
}

// Package gadget exports drives to the USB host through the kernel's
// configfs gadget tree. Each drive becomes one LUN of a mass_storage
// function; re-syncing the LUN set is how add and remove become visible on
// the other end of the cable.
package gadget

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const udcClassDir = "/sys/class/udc"

// Config locates and describes the gadget.
type Config struct {
	// ConfigFS is the usb_gadget mount point, normally
	// /sys/kernel/config/usb_gadget.
	ConfigFS string
	// Name is the gadget directory name.
	Name string
	// VendorID and ProductID are written as hex strings, e.g. "0x1d6b".
	VendorID     string
	ProductID    string
	Manufacturer string
	Product      string
	Serial       string
	// UDC names the controller to bind. Empty picks the first one the
	// kernel lists.
	UDC string
}

// MassStorage manages one mass-storage gadget.
type MassStorage struct {
	cfg Config
	log zerolog.Logger
}

// NewMassStorage returns a manager for the gadget described by cfg.
func NewMassStorage(cfg Config, log zerolog.Logger) *MassStorage {
	return &MassStorage{cfg: cfg, log: log}
}

func (g *MassStorage) root() string {
	return filepath.Join(g.cfg.ConfigFS, g.cfg.Name)
}

func (g *MassStorage) function() string {
	return filepath.Join(g.root(), "functions", "mass_storage.0")
}

func (g *MassStorage) lunDir(i int) string {
	return filepath.Join(g.function(), "lun."+strconv.Itoa(i))
}

// Create builds the static part of the gadget tree. It is idempotent, so
// a rebooted daemon can run it over a tree that already exists.
func (g *MassStorage) Create() error {
	root := g.root()
	for _, dir := range []string{
		root,
		filepath.Join(root, "strings", "0x409"),
		filepath.Join(root, "configs", "c.1", "strings", "0x409"),
		g.function(),
		g.lunDir(0),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}

	attrs := map[string]string{
		filepath.Join(root, "idVendor"):                                            g.cfg.VendorID,
		filepath.Join(root, "idProduct"):                                           g.cfg.ProductID,
		filepath.Join(root, "strings", "0x409", "manufacturer"):                    g.cfg.Manufacturer,
		filepath.Join(root, "strings", "0x409", "product"):                         g.cfg.Product,
		filepath.Join(root, "strings", "0x409", "serialnumber"):                    g.cfg.Serial,
		filepath.Join(root, "configs", "c.1", "MaxPower"):                          "250",
		filepath.Join(root, "configs", "c.1", "strings", "0x409", "configuration"): "Config 1",
	}
	for path, value := range attrs {
		if err := writeAttr(path, value); err != nil {
			return err
		}
	}

	link := filepath.Join(root, "configs", "c.1", "mass_storage.0")
	if _, err := os.Lstat(link); os.IsNotExist(err) {
		if err := os.Symlink(g.function(), link); err != nil {
			return errors.Wrap(err, "linking mass_storage function")
		}
	}
	g.log.Debug().Str("gadget", root).Msg("gadget tree ready")
	return nil
}

// Sync points the gadget's LUNs at the given backing files, one LUN per
// path in order, and binds the controller. An empty path list leaves a
// single empty LUN so the gadget stays valid. The controller is unbound
// while LUNs change because the kernel refuses file updates on a live
// gadget.
func (g *MassStorage) Sync(paths []string) error {
	if err := g.unbind(); err != nil {
		return err
	}

	existing, err := g.luns()
	if err != nil {
		return err
	}
	want := len(paths)
	if want == 0 {
		want = 1
	}
	for i := 0; i < want; i++ {
		if err := os.MkdirAll(g.lunDir(i), 0o755); err != nil {
			return errors.Wrapf(err, "creating lun.%d", i)
		}
		if err := writeAttr(filepath.Join(g.lunDir(i), "removable"), "1"); err != nil {
			return err
		}
		if err := writeAttr(filepath.Join(g.lunDir(i), "nofua"), "1"); err != nil {
			return err
		}
		backing := ""
		if i < len(paths) {
			backing = paths[i]
		}
		if err := writeAttr(filepath.Join(g.lunDir(i), "file"), backing); err != nil {
			return err
		}
	}
	for _, i := range existing {
		if i >= want && i > 0 {
			if err := g.removeLun(i); err != nil {
				return err
			}
		}
	}

	if err := g.bind(); err != nil {
		return err
	}
	g.log.Info().Int("luns", len(paths)).Msg("gadget synced")
	return nil
}

// Bound returns the controller the gadget is bound to, or empty when
// unbound.
func (g *MassStorage) Bound() (string, error) {
	raw, err := os.ReadFile(filepath.Join(g.root(), "UDC"))
	if err != nil {
		return "", errors.Wrap(err, "reading UDC")
	}
	return strings.TrimSpace(string(raw)), nil
}

// luns returns the indexes of existing lun directories in order.
func (g *MassStorage) luns() ([]int, error) {
	matches, err := filepath.Glob(filepath.Join(g.function(), "lun.*"))
	if err != nil {
		return nil, errors.Wrap(err, "listing luns")
	}
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		i, err := strconv.Atoi(filepath.Ext(m)[1:])
		if err != nil {
			continue
		}
		out = append(out, i)
	}
	sort.Ints(out)
	return out, nil
}

func (g *MassStorage) removeLun(i int) error {
	dir := g.lunDir(i)
	// configfs removes the attribute files with the directory itself; a
	// plain directory tree needs them unlinked first.
	for _, attr := range []string{"file", "removable", "nofua"} {
		_ = os.Remove(filepath.Join(dir, attr))
	}
	if err := os.Remove(dir); err != nil {
		return errors.Wrapf(err, "removing lun.%d", i)
	}
	return nil
}

func (g *MassStorage) unbind() error {
	// Writing the empty string detaches the gadget. The kernel reports
	// an error when it was not bound, which is fine.
	if err := writeAttr(filepath.Join(g.root(), "UDC"), ""); err != nil {
		g.log.Debug().Err(err).Msg("unbind skipped")
	}
	return nil
}

func (g *MassStorage) bind() error {
	name := g.cfg.UDC
	if name == "" {
		var err error
		name, err = firstUDC(udcClassDir)
		if err != nil {
			return err
		}
	}
	if err := writeAttr(filepath.Join(g.root(), "UDC"), name); err != nil {
		return err
	}
	return nil
}

// firstUDC picks the first controller the kernel lists.
func firstUDC(classDir string) (string, error) {
	entries, err := os.ReadDir(classDir)
	if err != nil {
		return "", errors.Wrap(err, "listing usb controllers")
	}
	if len(entries) == 0 {
		return "", errors.New("no usb device controller present")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names[0], nil
}

func writeAttr(path, value string) error {
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

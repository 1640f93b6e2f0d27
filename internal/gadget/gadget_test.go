package gadget

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGadget(t *testing.T) *MassStorage {
	t.Helper()
	cfg := Config{
		ConfigFS:     t.TempDir(),
		Name:         "piso",
		VendorID:     "0x1d6b",
		ProductID:    "0x0104",
		Manufacturer: "piso",
		Product:      "piso virtual drives",
		Serial:       "0001",
		UDC:          "20980000.usb",
	}
	g := NewMassStorage(cfg, zerolog.Nop())
	require.NoError(t, g.Create())
	return g
}

func readAttr(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

func TestCreateBuildsTree(t *testing.T) {
	g := newTestGadget(t)
	root := g.root()

	assert.Equal(t, "0x1d6b", readAttr(t, filepath.Join(root, "idVendor")))
	assert.Equal(t, "0x0104", readAttr(t, filepath.Join(root, "idProduct")))
	assert.Equal(t, "piso", readAttr(t, filepath.Join(root, "strings", "0x409", "manufacturer")))
	assert.Equal(t, "250", readAttr(t, filepath.Join(root, "configs", "c.1", "MaxPower")))

	link, err := os.Readlink(filepath.Join(root, "configs", "c.1", "mass_storage.0"))
	require.NoError(t, err)
	assert.Equal(t, g.function(), link)

	// lun.0 always exists.
	info, err := os.Stat(g.lunDir(0))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// A second Create over the same tree is fine.
	require.NoError(t, g.Create())
}

func TestSyncPointsLunsAtBackingFiles(t *testing.T) {
	g := newTestGadget(t)

	require.NoError(t, g.Sync([]string{"/dev/piso/vdrive0", "/dev/piso/vdrive1"}))

	assert.Equal(t, "/dev/piso/vdrive0", readAttr(t, filepath.Join(g.lunDir(0), "file")))
	assert.Equal(t, "/dev/piso/vdrive1", readAttr(t, filepath.Join(g.lunDir(1), "file")))
	assert.Equal(t, "1", readAttr(t, filepath.Join(g.lunDir(0), "removable")))
	assert.Equal(t, "1", readAttr(t, filepath.Join(g.lunDir(1), "nofua")))

	bound, err := g.Bound()
	require.NoError(t, err)
	assert.Equal(t, "20980000.usb", bound)
}

func TestSyncShrinksLunSet(t *testing.T) {
	g := newTestGadget(t)
	require.NoError(t, g.Sync([]string{"/dev/piso/a", "/dev/piso/b", "/dev/piso/c"}))

	require.NoError(t, g.Sync([]string{"/dev/piso/a"}))

	assert.Equal(t, "/dev/piso/a", readAttr(t, filepath.Join(g.lunDir(0), "file")))
	_, err := os.Stat(g.lunDir(1))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(g.lunDir(2))
	assert.True(t, os.IsNotExist(err))
}

func TestSyncEmptyKeepsSingleEmptyLun(t *testing.T) {
	g := newTestGadget(t)
	require.NoError(t, g.Sync([]string{"/dev/piso/a"}))

	require.NoError(t, g.Sync(nil))

	assert.Equal(t, "", readAttr(t, filepath.Join(g.lunDir(0), "file")))
	_, err := os.Stat(g.lunDir(1))
	assert.True(t, os.IsNotExist(err))

	bound, err := g.Bound()
	require.NoError(t, err)
	assert.Equal(t, "20980000.usb", bound)
}

func TestFirstUDC(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "fe980000.usb"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "20980000.usb"), 0o755))

	name, err := firstUDC(dir)
	require.NoError(t, err)
	assert.Equal(t, "20980000.usb", name)

	_, err = firstUDC(t.TempDir())
	assert.Error(t, err)
}

package cmd

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dogi/pISO/internal/gadget"
	"github.com/dogi/pISO/internal/lvm"
	"github.com/dogi/pISO/internal/vdrive"
)

// openRegistry builds the registry over the configured volume group for
// one headless operation.
func openRegistry(ctx context.Context) (*vdrive.Registry, error) {
	pool := lvm.New(cfg.VolumeGroup, cfg.ThinPool, log.Logger)
	return vdrive.NewRegistry(ctx, pool, vdrive.Options{Logger: log.Logger})
}

func gadgetConfig() gadget.Config {
	return gadget.Config{
		ConfigFS:     cfg.Gadget.ConfigFS,
		Name:         cfg.Gadget.Name,
		VendorID:     cfg.Gadget.VendorID,
		ProductID:    cfg.Gadget.ProductID,
		Manufacturer: cfg.Gadget.Manufacturer,
		Product:      cfg.Gadget.Product,
		Serial:       cfg.Gadget.Serial,
		UDC:          cfg.Gadget.UDC,
	}
}

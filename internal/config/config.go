// Package config loads the piso configuration from file, environment and
// defaults. Everything has a default that matches the stock device image,
// so an empty config is a working config.
package config

import (
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Display describes the framebuffer panel.
type Display struct {
	Device string `mapstructure:"device"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Depth  int    `mapstructure:"depth"`
}

// Input describes the button device and its key codes.
type Input struct {
	Device    string `mapstructure:"device"`
	UpKey     uint16 `mapstructure:"up_key"`
	DownKey   uint16 `mapstructure:"down_key"`
	SelectKey uint16 `mapstructure:"select_key"`
}

// Gadget describes the USB gadget identity.
type Gadget struct {
	ConfigFS     string `mapstructure:"configfs"`
	Name         string `mapstructure:"name"`
	VendorID     string `mapstructure:"vendor_id"`
	ProductID    string `mapstructure:"product_id"`
	Manufacturer string `mapstructure:"manufacturer"`
	Product      string `mapstructure:"product"`
	Serial       string `mapstructure:"serial"`
	UDC          string `mapstructure:"udc"`
}

// Config is the full daemon configuration.
type Config struct {
	LogLevel    string        `mapstructure:"log_level"`
	VolumeGroup string        `mapstructure:"volume_group"`
	ThinPool    string        `mapstructure:"thin_pool"`
	RescanEvery time.Duration `mapstructure:"rescan_every"`
	SizeStep    string        `mapstructure:"size_step"`
	Display     Display       `mapstructure:"display"`
	Input       Input         `mapstructure:"input"`
	Gadget      Gadget        `mapstructure:"gadget"`
}

// Load reads the configuration. With an explicit path the file must exist;
// otherwise piso.yaml is searched in /etc/piso and the working directory,
// and it is fine for none to exist. PISO_* environment variables override
// either, e.g. PISO_VOLUME_GROUP.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("volume_group", "piso")
	v.SetDefault("thin_pool", "thinpool")
	v.SetDefault("rescan_every", "30s")
	v.SetDefault("size_step", "1GB")
	v.SetDefault("display.device", "/dev/fb1")
	v.SetDefault("display.width", 128)
	v.SetDefault("display.height", 64)
	v.SetDefault("display.depth", 1)
	v.SetDefault("input.device", "/dev/input/event0")
	v.SetDefault("input.up_key", 103)
	v.SetDefault("input.down_key", 108)
	v.SetDefault("input.select_key", 28)
	v.SetDefault("gadget.configfs", "/sys/kernel/config/usb_gadget")
	v.SetDefault("gadget.name", "piso")
	v.SetDefault("gadget.vendor_id", "0x1d6b")
	v.SetDefault("gadget.product_id", "0x0104")
	v.SetDefault("gadget.manufacturer", "piso")
	v.SetDefault("gadget.product", "piso virtual drives")
	v.SetDefault("gadget.serial", "000001")
	v.SetDefault("gadget.udc", "")

	v.SetEnvPrefix("PISO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	} else {
		v.SetConfigName("piso")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/piso")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "reading config")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SizeStepBytes parses the picker step, e.g. "512MB".
func (c *Config) SizeStepBytes() (uint64, error) {
	var step datasize.ByteSize
	if err := step.UnmarshalText([]byte(c.SizeStep)); err != nil {
		return 0, errors.Wrapf(err, "size_step %q", c.SizeStep)
	}
	if step.Bytes() == 0 {
		return 0, errors.Errorf("size_step %q must be positive", c.SizeStep)
	}
	return step.Bytes(), nil
}

// Validate rejects configurations the daemon cannot start with.
func (c *Config) Validate() error {
	if c.VolumeGroup == "" {
		return errors.New("volume_group must be set")
	}
	if c.ThinPool == "" {
		return errors.New("thin_pool must be set")
	}
	if c.RescanEvery < 0 {
		return errors.New("rescan_every must not be negative")
	}
	if _, err := c.SizeStepBytes(); err != nil {
		return err
	}
	switch c.Display.Depth {
	case 1, 16, 32:
	default:
		return errors.Errorf("display.depth %d not supported", c.Display.Depth)
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return errors.Errorf("display geometry %dx%d not usable", c.Display.Width, c.Display.Height)
	}
	if c.Gadget.Name == "" {
		return errors.New("gadget.name must be set")
	}
	return nil
}

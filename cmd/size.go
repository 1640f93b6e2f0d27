package cmd

import (
	"github.com/c2h5oh/datasize"
	"github.com/spf13/pflag"
)

// sizeValue is a pflag.Value for human-readable byte sizes such as 512MB
// or 2GiB.
type sizeValue uint64

var _ pflag.Value = (*sizeValue)(nil)

func newSizeValue(def uint64) *sizeValue {
	v := sizeValue(def)
	return &v
}

func (s *sizeValue) Set(raw string) error {
	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(raw)); err != nil {
		return err
	}
	*s = sizeValue(v.Bytes())
	return nil
}

func (s *sizeValue) Type() string { return "size" }

// String renders the human form. The zero value renders empty, which
// pflag treats as no default worth printing.
func (s *sizeValue) String() string {
	if *s == 0 {
		return ""
	}
	return datasize.ByteSize(*s).HR()
}

// Bytes returns the parsed size.
func (s *sizeValue) Bytes() uint64 { return uint64(*s) }

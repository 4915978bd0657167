package profile

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// fileSet is the on-disk shape of a profile override file.
type fileSet struct {
	Trades []TradeProfile `yaml:"trades"`
	Niches []NicheProfile `yaml:"niches"`
}

// LoadFile builds a registry from a YAML profile file. Trades and niches in
// the file replace the built-in tables wholesale; an empty section keeps the
// built-ins for that section.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "profile: read %s", path)
	}

	var fs fileSet
	if err := yaml.Unmarshal(raw, &fs); err != nil {
		return nil, eris.Wrapf(err, "profile: parse %s", path)
	}

	var opts []Option
	if len(fs.Trades) > 0 {
		for i := range fs.Trades {
			if fs.Trades[i].DisplayName == "" {
				fs.Trades[i].DisplayName = DisplayNameFor(fs.Trades[i].ID)
			}
		}
		opts = append(opts, WithTrades(fs.Trades))
	}
	if len(fs.Niches) > 0 {
		for i := range fs.Niches {
			if fs.Niches[i].DisplayName == "" {
				fs.Niches[i].DisplayName = DisplayNameFor(fs.Niches[i].ID)
			}
		}
		opts = append(opts, WithNiches(fs.Niches))
	}

	zap.L().Info("loaded profile overrides",
		zap.String("path", path),
		zap.Int("trades", len(fs.Trades)),
		zap.Int("niches", len(fs.Niches)),
	)

	return NewRegistry(opts...)
}

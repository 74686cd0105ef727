package targets

import (
	_ "embed"
	"errors"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed targets.yaml
var rawTargets []byte

var targets Targets

var ErrTargetNotFound = errors.New("target not found")

func All() Targets {
	return targets
}

type Targets []TargetInfo

// TargetInfo describes a chip series the generator has been validated
// against. The table is advisory: generation proceeds for unknown devices,
// the driver just cannot vouch for them.
type TargetInfo struct {
	Series string   `yaml:"series"`
	Chips  []string `yaml:"chips"`
	Cpu    string   `yaml:"cpu"`
	Endian string   `yaml:"endian"`
}

func (t Targets) FindBySeries(name string) (TargetInfo, error) {
	for _, target := range t {
		if target.Series == strings.ToLower(name) {
			return target, nil
		}
	}
	return TargetInfo{}, ErrTargetNotFound
}

func (t Targets) FindByChip(name string) (TargetInfo, error) {
	for _, target := range t {
		if slices.Contains(target.Chips, strings.ToLower(name)) {
			return target, nil
		}
	}
	return TargetInfo{}, ErrTargetNotFound
}

func init() {
	var t struct {
		Elements []TargetInfo `yaml:"targets"`
	}
	if err := yaml.Unmarshal(rawTargets, &t); err != nil {
		panic(err)
	}

	targets = t.Elements
}

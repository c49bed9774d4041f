package modules

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/quill-lang/quill/internal/config"
)

// Manifest is the parsed quill.yaml at a project root. Modules maps module
// names to their declared dependencies; modules without an entry have none.
type Manifest struct {
	Name     string              `yaml:"name"`
	Version  string              `yaml:"version"`
	Language string              `yaml:"language"`
	Source   string              `yaml:"source"`
	Cache    string              `yaml:"cache"`
	Modules  map[string]ModuleCfg `yaml:"modules"`
}

// ModuleCfg is the per-module manifest section.
type ModuleCfg struct {
	Deps []string `yaml:"deps"`
}

// DefaultManifest is what a project without a quill.yaml gets.
func DefaultManifest() *Manifest {
	return &Manifest{
		Name:     "main",
		Language: "*",
		Source:   ".",
		Cache:    filepath.Join(".quill", "cache.db"),
	}
}

// LoadManifest reads quill.yaml from root. A missing file yields the
// defaults; an unreadable or invalid one is an error. The language
// constraint is checked against the toolchain version immediately.
func LoadManifest(root string) (*Manifest, error) {
	m := DefaultManifest()

	path := filepath.Join(root, config.ManifestFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", config.ManifestFileName, err)
	}

	if m.Source == "" {
		m.Source = "."
	}
	if m.Cache == "" {
		m.Cache = filepath.Join(".quill", "cache.db")
	}
	if m.Language == "" {
		m.Language = "*"
	}

	if err := m.checkLanguage(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) checkLanguage() error {
	c, err := semver.NewConstraint(m.Language)
	if err != nil {
		return fmt.Errorf("manifest language constraint %q: %w", m.Language, err)
	}
	v := semver.MustParse(config.LanguageVersion)
	if !c.Check(v) {
		return fmt.Errorf("language version %s does not satisfy manifest constraint %q",
			config.LanguageVersion, m.Language)
	}
	return nil
}

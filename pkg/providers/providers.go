package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package providers holds the ordered list of upstream API mirrors.

// Provider is one upstream mirror. BaseURL is opaque; order within a List is
// the only priority signal.
type Provider struct {
	ID      string         `json:"id" yaml:"id"`
	Name    string         `json:"name" yaml:"name"`
	BaseURL string         `json:"base_url" yaml:"base_url"`
	Config  map[string]any `json:"config" yaml:"config"`
}

// URL joins the provider base with a provider-relative resource path.
// Exactly one slash separates the two.
func (p Provider) URL(path string) string {
	return strings.TrimRight(p.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// List is an immutable, ordered sequence of providers. It is safe for
// concurrent use because nothing mutates it after construction.
type List struct {
	providers []Provider
}

type listFile struct {
	Providers []Provider `json:"providers" yaml:"providers"`
}

// NewList validates providers and freezes them in the given order.
func NewList(providers ...Provider) (*List, error) {
	out := make([]Provider, 0, len(providers))
	ids := make(map[string]struct{}, len(providers))
	bases := make(map[string]struct{}, len(providers))

	for i := range providers {
		p := sanitizeProvider(providers[i])
		if err := validateProvider(p); err != nil {
			return nil, fmt.Errorf("provider[%d]: %w", i, err)
		}
		if _, exists := ids[p.ID]; exists {
			return nil, fmt.Errorf("duplicate provider id %q", p.ID)
		}
		base := strings.TrimRight(strings.ToLower(p.BaseURL), "/")
		if _, exists := bases[base]; exists {
			return nil, fmt.Errorf("duplicate provider base_url %q", p.BaseURL)
		}
		ids[p.ID] = struct{}{}
		bases[base] = struct{}{}
		out = append(out, p)
	}

	return &List{providers: out}, nil
}

// LoadList loads the provider list from a YAML or JSON file. An empty path
// yields the built-in mirror list.
func LoadList(path string) (*List, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultList(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open providers file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}

	reg, err := parseListFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(reg.Providers) == 0 {
		return nil, errors.New("providers file contains no providers entries")
	}

	return NewList(reg.Providers...)
}

// All returns a copy of the providers in priority order.
func (l *List) All() []Provider {
	if l == nil || len(l.providers) == 0 {
		return nil
	}
	out := make([]Provider, len(l.providers))
	copy(out, l.providers)
	return out
}

// Len returns the number of providers.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.providers)
}

// IDs returns provider ids in priority order.
func (l *List) IDs() []string {
	if l == nil {
		return nil
	}
	ids := make([]string, 0, len(l.providers))
	for _, p := range l.providers {
		ids = append(ids, p.ID)
	}
	return ids
}

func parseListFile(data []byte, ext string) (listFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalListFile(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return listFile{}, errors.New("providers file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalListFile(name string, data []byte, fn unmarshalFn) (listFile, error) {
	var reg listFile
	if err := fn(data, &reg); err != nil {
		return listFile{}, fmt.Errorf("decode %s providers: %w", name, err)
	}
	return reg, nil
}

func sanitizeProvider(p Provider) Provider {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.BaseURL = strings.TrimSpace(p.BaseURL)

	if p.ID == "" {
		if u, err := url.Parse(p.BaseURL); err == nil {
			p.ID = strings.ToLower(u.Hostname())
		}
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.Config == nil {
		p.Config = map[string]any{}
	}
	return p
}

func validateProvider(p Provider) error {
	if p.BaseURL == "" {
		return errors.New("base_url is required")
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url %q: %w", p.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %q must use http or https", p.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url %q has no host", p.BaseURL)
	}
	if p.ID == "" {
		return fmt.Errorf("id is required for provider %q", p.BaseURL)
	}
	return nil
}

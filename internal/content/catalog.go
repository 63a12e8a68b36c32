package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Quote is an attributed saying served by /quote.
type Quote struct {
	Text   string `yaml:"text" validate:"required"`
	Author string `yaml:"author" validate:"required"`
}

// Stickers lists the sticker tiers in the order they are tried.
type Stickers struct {
	// Welcome stickers greet new members.
	Welcome []string `yaml:"welcome" validate:"dive,required"`
	// Fallback stickers are file IDs tried before any set lookup.
	Fallback []string `yaml:"fallback" validate:"dive,required"`
	// Sets are sticker set names resolved through getStickerSet.
	Sets []string `yaml:"sets" validate:"dive,required"`
}

// Catalogs is the content file.
type Catalogs struct {
	Jokes    []string `yaml:"jokes" validate:"required,min=1,dive,required"`
	Quotes   []Quote  `yaml:"quotes" validate:"required,min=1,dive"`
	Stickers Stickers `yaml:"stickers"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadCatalogs decodes and validates a YAML content file.
func LoadCatalogs(r io.Reader) (*Catalogs, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalogs
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("welcomebot/content: decode catalog: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("welcomebot/content: invalid catalog: %w", err)
	}
	if len(c.Stickers.Welcome)+len(c.Stickers.Fallback)+len(c.Stickers.Sets) == 0 {
		return nil, fmt.Errorf("welcomebot/content: invalid catalog: no stickers")
	}
	return &c, nil
}

// DefaultCatalogs returns the content compiled into the binary.
func DefaultCatalogs() *Catalogs {
	c, err := LoadCatalogs(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads the catalog at path, or the embedded one when path is empty.
func LoadFile(path string) (*Catalogs, error) {
	if path == "" {
		return DefaultCatalogs(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("welcomebot/content: %w", err)
	}
	defer f.Close()
	return LoadCatalogs(f)
}

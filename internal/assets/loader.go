package assets

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for asset loading.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidBasePath  = errors.New("invalid asset directory")
	ErrAssetRead        = errors.New("failed to read asset")
	ErrPathTraversal    = errors.New("asset path escapes its directory")
)

// Default asset names.
const (
	DefaultStyle    = "book"
	DefaultTemplate = "book"
)

// Kind is a family of assets sharing a directory and an extension.
type Kind struct {
	Dir      string
	Ext      string
	NotFound error // wrapped when no asset has the name
}

// Asset kinds.
var (
	Style    = Kind{Dir: "styles", Ext: ".css", NotFound: ErrStyleNotFound}
	Template = Kind{Dir: "templates", Ext: ".html", NotFound: ErrTemplateNotFound}
)

// file returns the slash-separated path of name, relative to a base.
func (k Kind) file(name string) string {
	return k.Dir + "/" + name + k.Ext
}

// AssetLoader loads an asset by kind and name (without extension).
type AssetLoader interface {
	Load(kind Kind, name string) (string, error)
}

// ValidateAssetName rejects empty names and names that could leave the
// asset directory or change the extension.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

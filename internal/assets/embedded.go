package assets

import (
	"embed"
	"fmt"
)

//go:embed styles templates
var embedded embed.FS

// EmbeddedLoader serves the assets compiled into the binary.
type EmbeddedLoader struct{}

var _ AssetLoader = EmbeddedLoader{}

// Load returns the embedded asset.
func (EmbeddedLoader) Load(kind Kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	data, err := embedded.ReadFile(kind.file(name))
	if err != nil {
		return "", fmt.Errorf("%w: %q", kind.NotFound, name)
	}
	return string(data), nil
}

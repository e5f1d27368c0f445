package assets

import "errors"

// AssetResolver loads book assets first and embedded assets second.
type AssetResolver struct {
	custom AssetLoader // nil when the book has no asset directory
}

var _ AssetLoader = (*AssetResolver)(nil)

// NewAssetResolver creates a resolver. An empty base uses embedded assets only.
func NewAssetResolver(base string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if base != "" {
		fs, err := NewFilesystemLoader(base)
		if err != nil {
			return nil, err
		}
		r.custom = fs
	}
	return r, nil
}

// Load returns the book's asset, else the embedded one. Only a missing
// asset falls back; invalid names and read errors are returned.
func (r *AssetResolver) Load(kind Kind, name string) (string, error) {
	if r.custom != nil {
		content, err := r.custom.Load(kind, name)
		if !errors.Is(err, kind.NotFound) {
			return content, err
		}
	}
	return EmbeddedLoader{}.Load(kind, name)
}

// LoadStyle loads a stylesheet.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.Load(Style, name)
}

// LoadTemplate loads a page template.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.Load(Template, name)
}

// HasCustomLoader reports whether a book asset directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

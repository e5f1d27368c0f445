// Package assets loads the stylesheet and page template of the built-in
// HTML backend.
//
// Assets come from two places: the defaults embedded in the binary, and an
// optional book directory (assets.basePath in book.yaml) laid out as
//
//	{basePath}/styles/{name}.css
//	{basePath}/templates/{name}.html
//
// AssetResolver looks in the book directory first and falls back to the
// embedded copy only when the book has no file of that name. Names never
// contain separators or dots, and resolved files must stay inside basePath
// after symlink resolution.
package assets

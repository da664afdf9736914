// Package template renders text/template strings with the sprig function
// library. Replace walks maps and slices so structured values such as mock
// responses can carry templates at any depth.
package template

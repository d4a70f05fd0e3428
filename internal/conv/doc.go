// Package conv narrows integers for on-disk formats.
//
// Roadmap files store counts and indices as fixed-width unsigned integers;
// the helpers here reject values that do not fit instead of truncating them.
package conv

// Package domain contains the core viewer entities and the pure
// coordinate model. Every stored annotation or selection position is
// expressed in normalized [0,1] page-relative units so that records
// survive zoom changes and re-layout unchanged.
package domain

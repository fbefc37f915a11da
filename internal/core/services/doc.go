// Package services implements the viewer core: the page geometry
// registry, zoom controller, scroll/current-page synchronizer,
// selection capture, outline resolver, floating panel placement and
// the orchestrating viewer service.
//
// All state lives on per-viewer instances; there is no process-wide
// state. Async results (loads, outline resolution, page renders) are
// tagged with the document generation they were issued for and are
// discarded when the identity has changed by the time they land.
package services

// Package driven defines the outbound ports the viewer core depends
// on: the page renderer, the annotation store, the host viewport and
// page surfaces, timers, and layout-change notifications. Adapters
// implement these interfaces; the core never imports an adapter.
package driven

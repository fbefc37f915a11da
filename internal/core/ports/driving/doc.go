// Package driving defines the inbound ports exposed to host
// applications: document loading and navigation, zoom, selection
// capture, outline access, annotation management and floating panel
// placement.
package driving

// Package template defines the renderer-agnostic template seam used by the
// selector's HTML renderer. The pongo sub-package provides the engine.
package template

// Package adcselector implements the Application Design Center template picker
// form field.
//
// A Field drives the catalog client through token acquisition and template
// listing, tracks loading/selection state for one mount, and exposes a View
// that the HTML Renderer turns into a grid of selectable cards (or skeleton
// placeholders while loading). The enclosing form owns the selected value: the
// field only reports clicks through Props.OnChange and reflects FormData.
//
// Component bundles a field factory with net/http handlers for the catalog
// options endpoint and the field fragment.
package adcselector

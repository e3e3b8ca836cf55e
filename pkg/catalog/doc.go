// Package catalog talks to the Application Design Center (ADC) template catalog.
//
// A Client pairs a TokenProvider, which yields an OAuth access token for the
// cloud-platform scope, with a Fetcher that lists templates using that token.
// HTTPFetcher calls the catalog service and validates the payload against an
// embedded OpenAPI description; StaticFetcher serves the embedded sample catalog
// after an artificial delay and stands in for the service during local runs.
package catalog

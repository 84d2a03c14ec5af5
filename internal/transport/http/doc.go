// Package http carries the chi handlers for the analytics API. Handlers stay
// thin: they validate input, call the services layer, and map its sentinel
// errors onto structured API errors. All state lives below the service
// boundary.
package http

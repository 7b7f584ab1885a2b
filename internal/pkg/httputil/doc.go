// Package httputil provides the JSON envelope helpers shared by the API
// handlers. Handlers write responses through these helpers instead of raw
// http.ResponseWriter calls so every endpoint emits the same error shape.
package httputil

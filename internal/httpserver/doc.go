// Package httpserver runs an HTTP server from a resolved server
// configuration: address, timeouts, and request throttling come from the
// contract options, and the configured middleware entries are instantiated by
// name onto the router.
package httpserver

// Package app is the composition root of the analytics server. It loads
// configuration, builds the logger, metrics, trial manager, and report
// service, assembles the chi router, and runs the HTTP server with graceful
// shutdown. Nothing outside this package constructs more than one component.
package app

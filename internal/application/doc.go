// Package application wires the demo service together: it declares the two
// configuration scopes, resolves them through the tracecfg pipeline, and
// builds the handlers, router, and HTTP server from the result, keeping the
// main package focused on orchestration and shutdown.
package application

// Package server is the shelfd HTTP API. Handlers delegate to a
// courier.Courier, normally the simulated backend over a library repository,
// so the terminal client's http courier mode sees the same behavior as its
// in-process one.
package server

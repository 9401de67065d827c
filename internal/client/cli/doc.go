// Package cli implements the gophauth command-line client.
//
// Every invocation runs a single subcommand (register, login, refresh,
// whoami, invalidate, logout). The token pair obtained at login is cached in
// a local session database so that later invocations, including the
// automatic refresh done by the gRPC client, reuse it.
package cli

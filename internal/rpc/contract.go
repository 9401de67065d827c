package rpc

import _ "embed"

// Contract is the .proto description of AuthService for non-Go clients.
//
//go:embed auth.proto
var Contract string

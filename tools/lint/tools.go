//go:build tools

// Package lint pins the linters used on go-openregister. It is a separate
// module so the library's go.mod stays free of tool dependencies.
//
// Usage from the repository root:
//
//	go run -modfile=tools/lint/go.mod github.com/golangci/golangci-lint/v2/cmd/golangci-lint run ./...
//	go run -modfile=tools/lint/go.mod honnef.co/go/tools/cmd/staticcheck ./...
package lint

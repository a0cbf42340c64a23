// Package version reports the build of the running binary.
//
//	go build -ldflags "-X github.com/kbukum/clipscribe/version.Version=1.2.0 -X github.com/kbukum/clipscribe/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/clipscribe
package version

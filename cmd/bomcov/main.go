// Package main is the entry point for the bomcov CLI tool.
package main

import (
	"github.com/hargabyte/bomcov/internal/cmd"
)

func main() {
	cmd.Execute()
}

// Package main is the entry point for the reportgen CLI tool.
package main

import (
	"github.com/hargabyte/salesreport/internal/cmd"
)

func main() {
	cmd.Execute()
}

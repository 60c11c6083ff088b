package main

import (
	"os"

	"github.com/siyuan-infoblox/ts-import-types/pkg/cmd"
	"github.com/siyuan-infoblox/ts-import-types/pkg/version"
)

func main() {
	if err := cmd.Execute(version.Get()); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"runtime"
)

// BuildVersion is stamped at build time via -ldflags.
var BuildVersion = "dev"

// Version prints version and build metadata.
type Version struct{}

func (v *Version) Run() error {
	fmt.Printf("ninjausb %s (%s, %s/%s)\n", BuildVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}

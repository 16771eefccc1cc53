package main

import (
	"github.com/apodeixis-project/apodeixis/cmd/apodeixis"
)

// Values for version are injected by the build.
var (
	VERSION = ""
)

func main() {
	apodeixis.Execute(VERSION)
}

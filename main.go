package main

import (
	"log"

	"github.com/sjzar/advshortcut/cmd/advshortcut"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	advshortcut.Execute()
}

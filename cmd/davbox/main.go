package main

import (
	"log"
	"os"

	"github.com/xxxsen/davbox/cmd/davbox/cmd"
)

func main() {
	if err := cmd.NewRoot().Execute(); err != nil {
		log.Printf("exec cmd failed, err:%v", err)
		os.Exit(1)
	}
}

package main

import (
	"log"

	"github.com/vocaquiz/vocaquiz/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("vocaquiz: %v", err)
	}
}

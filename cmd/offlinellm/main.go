package main

import (
	"log"

	"github.com/offlinellm/client-go/internal/builder"
)

func main() {
	deps, err := builder.Build()
	if err != nil {
		log.Fatal("Failed to build application:", err)
	}

	if err := newRepl(deps).run(); err != nil {
		log.Fatal("Application error:", err)
	}
}

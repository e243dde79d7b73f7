package main

import (
	"fmt"
	"os"

	"github.com/metinatakli/event-ticketing/internal/app"
)

func main() {
	err := app.Run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "event-ticketing-api: %v\n", err)
		os.Exit(1)
	}
}

// Package main implements the remind-api server: a todo list whose items
// can carry a one-shot reminder delivered through the most durable
// notification channel available.
package main

import (
	"log"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("error during command execution: %v", err)
	}
}

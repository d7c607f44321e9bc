package main

import (
	"github.com/RyanLiu6/crypto-tracker/internal/cli"
)

func main() {
	cli.Execute()
}

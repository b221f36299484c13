// Package main is the entry point for the deferview application.
package main

import (
	"github.com/deferview/deferview/cmd"
	"github.com/deferview/deferview/config"
	"github.com/deferview/deferview/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}

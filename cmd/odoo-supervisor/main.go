package main

import "odoo-supervisor/internal/cli"

func main() {
	cli.Execute()
}

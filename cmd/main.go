package main

import (
	"context"

	"book_scraper/cmd/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}

package main

import "github.com/km-arc/go-envguard/app/console"

func main() {
	console.Execute()
}

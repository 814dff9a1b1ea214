package main

import "github.com/procurehq/rfpflow/internal/app"

func main() {
	app.Execute()
}

package main

import (
	"log"

	"github.com/sahilchouksey/exam-predict-api/app"
)

func main() {
	// setup and run app
	err := app.SetupAndRunServer()
	if err != nil {
		log.Fatal(err)
	}
}

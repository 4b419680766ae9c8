package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/extortion-watch/extortion-report-api/api/handlers"

	"go.uber.org/zap"

	"github.com/extortion-watch/extortion-report-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	err := a.Initialize() // initialize database, auth, chat hub and router
	if err != nil {
		log.Fatal(err)
	}

	zap.S().Infow("extortion-report-api is up and running",
		"port", a.Config.Port,
		"url", a.Config.BaseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", a.Config.Port), a.Router))
}

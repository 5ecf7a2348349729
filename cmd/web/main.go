// @title           Pharmacy Notifications API
// @version         1.0
// @description     Notification gateway, prescriptions and pharmacy offers.
// @host            localhost:4000
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

package main

import (
	_ "pharmacy_backend/docs"
	"pharmacy_backend/internal/app"
)

func main() {
	app.Run()
}

package main

import (
	"fmt"

	"IdeaToVideo-server/config"
	"IdeaToVideo-server/models"
	"IdeaToVideo-server/routers"
	"IdeaToVideo-server/routers/api"
	"IdeaToVideo-server/service"
)

func main() {
	config.InitConfig()
	fmt.Println("Server starting on port", config.AppConfig.Server.Port)
	models.InitDB()
	fmt.Println("Database initialized")

	service.InitQueue()
	fmt.Println("Queue initialized")

	service.InitMinIO()
	fmt.Println("MinIO initialized")

	service.StartQueueServer()

	api.Pipe = &service.Pipeline{
		Store:     service.DBStore{},
		Providers: service.NewHTTPProviders(),
		Objects:   service.MinioStore{},
		Gateway:   service.NewGateway(),
		Resaver:   service.QueueResaver{},
	}

	r := routers.InitRouter()
	r.Run(config.AppConfig.Server.Port)
}

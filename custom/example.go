package custom

import (
	"context"
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"pos.GO/api"
	"pos.GO/cmd"
	"pos.GO/config"
	"pos.GO/cron"
	gqlregistry "pos.GO/graphql/registry"
)

func init() {
	// GraphQL extension: query { extension(name: "deviceInfo") }
	gqlregistry.Register("deviceInfo", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		id := ""
		if config.AppConfig != nil {
			id = config.AppConfig.DeviceID
		}
		return map[string]string{"deviceId": id}, nil
	})

	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "device:info",
		Short: "Print this terminal's device id",
		Run: func(c *cobra.Command, args []string) {
			config.LoadEnv()
			config.LoadAppConfig()
			fmt.Println("Device:", config.AppConfig.DeviceID)
		},
	})

	// Cron job
	cron.Register("heartbeat", "@every 5m", func(args ...string) {
		log.Println("[custom] heartbeat")
	})

	// HTTP route
	api.RegisterGET("/custom/ping", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"pong": "ok"})
	})
}

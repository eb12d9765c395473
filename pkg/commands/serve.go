package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/newday/pkg/config"
	"tableflip.dev/newday/pkg/remote"
	"tableflip.dev/newday/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API external tools use to add tasks.",
		Example: `
newday serve
newday serve --addr :8080

curl -X POST http://127.0.0.1:8080/addTask \
  -H "Authorization: Bearer $NEWDAY_KEY" \
  -H "Content-Type: application/json" \
  -d '{"text": "Review the design doc", "type": "Most"}'
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := remote.Open(cfg.BasePath())
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.ServeAddr()
			}
			s := serve.Serve{
				Store:   store,
				Addr:    addr,
				Origins: cfg.Origins(),
				Logger:  logger(),
			}
			return s.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address. Defaults to serve.addr from the config.")

	topLevel.AddCommand(cmd)
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/stockroom/app/controllers"
	"github.com/shashiranjanraj/stockroom/app/routes"
	"github.com/shashiranjanraj/stockroom/internal/server"
	"github.com/shashiranjanraj/stockroom/pkg/router"
	"github.com/shashiranjanraj/stockroom/pkg/ws"
)

// stockroom serve — start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// stockroom route:list — print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Handlers are never invoked here, so wiring stays dry.
		r := router.New()
		routes.RegisterAPI(r, controllers.NewInventoryController(nil),
			ws.NewHub("inventory"), ws.NewHub("notifications"))

		infos := r.Routes()
		if len(infos) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

// Skillet CLI - one-shot evaluation and the long-running servers.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/zenbakiak/skillet"
	"github.com/zenbakiak/skillet/config"
	"github.com/zenbakiak/skillet/plugins"
	"github.com/zenbakiak/skillet/server"
	"github.com/zenbakiak/skillet/vm"

	_ "github.com/tliron/commonlog/simple"
)

var (
	configPath string
	verbosity  int
)

func main() {
	root := &cobra.Command{
		Use:   "skillet",
		Short: "Skillet expression engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbosity, nil)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "skillet.toml", "configuration file")
	root.PersistentFlags().IntVarP(&verbosity, "verbose", "v", 0, "log verbosity")

	root.AddCommand(evalCommand(), serveCommand(), httpCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfigAndHooks() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	loader := plugins.NewLoader(cfg.Hooks.Dir)
	if _, err := loader.AutoRegister(skillet.Registry()); err != nil {
		return cfg, fmt.Errorf("loading hooks: %w", err)
	}
	return cfg, nil
}

func evalCommand() *cobra.Command {
	var varsJSON string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate a single expression and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfigAndHooks(); err != nil {
				return err
			}

			var converted map[string]vm.Value
			if varsJSON != "" {
				var err error
				converted, err = skillet.VariablesFromJSON(varsJSON)
				if err != nil {
					return fmt.Errorf("invalid --vars JSON: %w", err)
				}
			}

			result, finalVars, err := skillet.EvaluateWithAssignments(args[0], converted)
			if err != nil {
				return err
			}

			if asJSON {
				payload, err := skillet.ValueToJSON(result)
				if err != nil {
					return err
				}
				out := map[string]interface{}{
					"result": payload,
					"type":   result.Kind().String(),
				}
				if len(finalVars) > 0 {
					varsOut := map[string]interface{}{}
					for name, v := range finalVars {
						if conv, err := skillet.ValueToJSON(v); err == nil {
							varsOut[name] = conv
						}
					}
					out["variables"] = varsOut
				}
				raw, _ := json.MarshalIndent(out, "", "  ")
				fmt.Println(string(raw))
				return nil
			}

			fmt.Println(result.Format())
			return nil
		},
	}
	cmd.Flags().StringVar(&varsJSON, "vars", "", "variables as a JSON object")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print a structured JSON result")
	return cmd
}

func serveCommand() *cobra.Command {
	var port int
	var threads int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the TCP line-protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigAndHooks()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if threads > 0 {
				cfg.Server.Threads = threads
			}
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			srv := server.NewTCPServer(addr, cfg.Server.Threads)
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	cmd.Flags().IntVarP(&threads, "threads", "t", 0, "worker threads (overrides config)")
	return cmd
}

func httpCommand() *cobra.Command {
	var port int
	var host string
	var authToken string
	var adminToken string

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigAndHooks()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.HTTPPort = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if authToken != "" {
				cfg.Server.AuthToken = authToken
			}
			if adminToken != "" {
				cfg.Server.AdminToken = adminToken
			}
			srv := server.NewHTTPServer(cfg)
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort)
			return srv.ListenAndServe(addr)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "bind host (overrides config)")
	cmd.Flags().StringVar(&authToken, "token", "", "require this token for eval requests")
	cmd.Flags().StringVar(&adminToken, "admin-token", "", "require this token for hook management")
	return cmd
}

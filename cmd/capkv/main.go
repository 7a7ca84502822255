// Command capkv is a thin demonstration binary over the capkv
// library: it wires a CredentialRegistry and NamespaceRouter rooted at
// one or more --zone-root directories and/or the zones named in a
// --config YAML file (see internal/capkvconfig), and exposes
// register/set/get (plus shared/readonly variants) as cobra
// subcommands. An optional --watch flag also starts a
// resolver.ZoneWatcher over the same roots for the life of the
// command, logging zone-root filesystem activity to stderr.
//
// Grounded on cli/main.go's structure (a cobra root command, flag
// parsing, explicit os.Exit on failure) though it shares none of
// opal-lang-opal's command-execution machinery.
//
// Every subcommand handler in this file resolves its caller identity
// from this same source file, so the demo only ever acts as a single
// caller — exercising multiple distinct identities requires embedding
// capkv as a library from more than one package, each under its own
// zone root.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/capkv/capkv/internal/capkvconfig"
	"github.com/capkv/capkv/internal/capkvlog"
	"github.com/capkv/capkv/internal/credential"
	"github.com/capkv/capkv/internal/registry"
	"github.com/capkv/capkv/internal/resolver"
	"github.com/capkv/capkv/internal/router"
)

type app struct {
	zoneRoots  []string
	configPath string
	watch      bool
	reg        *registry.CredentialRegistry
	rtr        *router.NamespaceRouter
	zoneWatch  *resolver.ZoneWatcher
}

func (a *app) setup() error {
	if a.reg != nil {
		return nil
	}

	roots := a.zoneRoots
	if a.configPath != "" {
		cfg, err := capkvconfig.Load(a.configPath)
		if err != nil {
			return err
		}
		roots = append(roots, cfg.ZoneRoots()...)
	}
	if len(roots) == 0 {
		return fmt.Errorf("at least one --zone-root or --config zone is required")
	}

	reg, err := registry.New(roots)
	if err != nil {
		return err
	}
	rtr, err := router.New(reg)
	if err != nil {
		return err
	}
	a.reg, a.rtr = reg, rtr

	if a.watch {
		zw, err := resolver.NewZoneWatcher(roots, capkvlog.New("zonewatch"))
		if err != nil {
			return err
		}
		a.zoneWatch = zw
	}
	return nil
}

// close releases resources setup acquired. Safe to call even if setup
// never ran or failed partway through.
func (a *app) close() {
	if a.zoneWatch != nil {
		a.zoneWatch.Close()
	}
}

func parseLevel(s string) (credential.Level, error) {
	switch s {
	case "admin":
		return credential.LevelAdmin, nil
	case "read-write":
		return credential.LevelReadWrite, nil
	case "write-only":
		return credential.LevelWriteOnly, nil
	case "read-only":
		return credential.LevelReadOnly, nil
	default:
		return 0, fmt.Errorf("unknown level %q (want admin, read-write, write-only, or read-only)", s)
	}
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "capkv",
		Short:         "Demonstrate the capkv caller-scoped key-value store",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringArrayVar(&a.zoneRoots, "zone-root", nil, "zone root directory (repeatable)")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML zone-layout file (see internal/capkvconfig); merged with --zone-root")
	rootCmd.PersistentFlags().BoolVar(&a.watch, "watch", false, "log zone-root filesystem activity via a resolver.ZoneWatcher for the life of the command")

	rootCmd.AddCommand(
		registerCmd(a),
		setCmd(a),
		getCmd(a),
		sharedSetCmd(a),
		sharedGetCmd(a),
		readonlySetCmd(a),
		readonlyGetCmd(a),
	)

	err := rootCmd.Execute()
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "capkv: %v\n", err)
		os.Exit(1)
	}
}

func registerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register [level]",
		Short: "Issue a credential for this caller",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			level, err := parseLevel(args[0])
			if err != nil {
				return err
			}
			cred, err := a.reg.Register(level)
			if err != nil {
				return err
			}
			fmt.Printf("registered caller=%s token=%s level=%s zone=%s\n", cred.Name, cred.Token, cred.Level, cred.Zone)
			return nil
		},
	}
}

func setCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set a key in this caller's private namespace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			return a.rtr.Set(args[0], args[1])
		},
	}
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Get a key from this caller's private namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			v, err := a.rtr.Get(args[0], "")
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	}
}

func sharedSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shared-set [key] [value]",
		Short: "Set a key in the shared read-write namespace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			return a.rtr.SharedSet(args[0], args[1])
		},
	}
}

func sharedGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shared-get [key]",
		Short: "Get a key from the shared read-write namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			v, err := a.rtr.SharedGet(args[0], "")
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	}
}

func readonlySetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "readonly-set [key] [value]",
		Short: "Set a key in the shared read-only namespace (requires an admin credential)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			return a.rtr.ReadonlySet(args[0], args[1])
		},
	}
}

func readonlyGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "readonly-get [key]",
		Short: "Get a key from the shared read-only namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			v, err := a.rtr.ReadonlyGet(args[0], "")
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	}
}

package cluster

import (
	"fmt"

	"github.com/ValentinKolb/rKV/cmd/util"
	"github.com/ValentinKolb/rKV/rpc/cluster"
	"github.com/spf13/cobra"
)

var (
	router *cluster.Router

	// ClusterCommands represents the cluster command group
	ClusterCommands = &cobra.Command{
		Use:   "cluster",
		Short: "Perform operations routed over several nodes",
		Long: `Perform operations routed over several nodes. Every key is owned by exactly one node
(fnv1a(key) mod number of nodes). All clients must use the same node list in the same order.`,
		PersistentPreRunE:  setupRouter,
		PersistentPostRunE: closeRouter,
	}

	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key on its owning node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := router.Set(cmd.Context(), args[0], []byte(args[1])); err != nil {
				return err
			}
			fmt.Printf("OK (%s)\n", router.TargetNode(args[0]))
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Gets the value for a key from its owning node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, ok, err := router.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("(nil)")
				return nil
			}
			fmt.Println(string(value))
			return nil
		},
	}
	publishCmd = &cobra.Command{
		Use:   "publish [channel] [message]",
		Short: "Publishes a message on the node owning the channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := router.Publish(cmd.Context(), args[0], []byte(args[1]))
			if err != nil {
				return err
			}
			fmt.Printf("delivered to %d subscriber(s) on %s\n", n, router.TargetNode(args[0]))
			return nil
		},
	}
	nodeCmd = &cobra.Command{
		Use:   "node [key]",
		Short: "Prints the node owning a key or channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(router.TargetNode(args[0]))
			return nil
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common connection flags to the cluster command
	util.SetupClientFlags(ClusterCommands, "localhost:6379")

	// Add subcommands
	ClusterCommands.AddCommand(setCmd)
	ClusterCommands.AddCommand(getCmd)
	ClusterCommands.AddCommand(publishCmd)
	ClusterCommands.AddCommand(nodeCmd)
}

// setupRouter creates the router over all configured endpoints
func setupRouter(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()
	connector, err := util.GetClientConnector(config)
	if err != nil {
		return err
	}

	router, err = cluster.NewRouter(config.Endpoints, *config, connector)
	return err
}

func closeRouter(_ *cobra.Command, _ []string) error {
	if router == nil {
		return nil
	}
	return router.Close()
}

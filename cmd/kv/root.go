package kv

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/rKV/cmd/util"
	"github.com/ValentinKolb/rKV/rpc/client"
	"github.com/spf13/cobra"
)

var (
	kvClient *client.Client

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value and pub/sub operations on a single node",
		PersistentPreRunE:  setupKVClient,
		PersistentPostRunE: closeKVClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common connection flags to the KV command
	util.SetupClientFlags(KeyValueCommands, "localhost:6379")

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(pingCmd)
	KeyValueCommands.AddCommand(publishCmd)
	KeyValueCommands.AddCommand(subscribeCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVClient connects to the first configured endpoint
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoint configured")
	}

	connector, err := util.GetClientConnector(config)
	if err != nil {
		return err
	}

	kvClient, err = client.Connect(context.Background(), config.Endpoints[0], *config, connector)
	return err
}

func closeKVClient(_ *cobra.Command, _ []string) error {
	if kvClient == nil {
		return nil
	}
	return kvClient.Close()
}

package sentinel

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ValentinKolb/rKV/cmd/util"
	"github.com/ValentinKolb/rKV/lib/failover"
	"github.com/ValentinKolb/rKV/rpc/client"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	sentinelConfig = &common.SentinelConfig{}

	// SentinelCmd runs the failover monitor
	SentinelCmd = &cobra.Command{
		Use:   "sentinel",
		Short: "Monitor a primary and promote a replica when it fails",
		Long: `Monitor a primary node and promote the first responsive replica when the primary
stops answering PING. Promotions are printed to stdout. The monitor does not reconfigure the
nodes, there is no quorum and no fencing of the old primary.`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common connection flags used by the probes
	util.SetupClientFlags(SentinelCmd, "")

	key := "primary"
	SentinelCmd.Flags().String(key, "localhost:6379", util.WrapString("Address of the initial primary"))

	key = "replicas"
	SentinelCmd.Flags().String(key, "", util.WrapString("Comma-separated list of replica addresses in order of preference"))

	key = "interval-ms"
	SentinelCmd.Flags().Int(key, 1000, util.WrapString("Time between two health checks in milliseconds"))

	key = "probe-timeout-ms"
	SentinelCmd.Flags().Int(key, 500, util.WrapString("Timeout of a single probe in milliseconds"))

	key = "log-level"
	SentinelCmd.Flags().String(key, "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

func processConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	sentinelConfig.Primary = viper.GetString("primary")
	sentinelConfig.Replicas = util.SplitList(viper.GetString("replicas"))
	sentinelConfig.IntervalMillis = viper.GetInt("interval-ms")
	sentinelConfig.ProbeTimeoutMillis = viper.GetInt("probe-timeout-ms")

	if sentinelConfig.Primary == "" {
		return fmt.Errorf("a primary address is required")
	}
	return common.InitLoggers(viper.GetString("log-level"))
}

// run starts the monitor and blocks until SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	clientConfig := util.GetClientConfig()
	connector, err := util.GetClientConnector(clientConfig)
	if err != nil {
		return err
	}

	fmt.Println(sentinelConfig.String())

	monitor := failover.NewMonitor(*sentinelConfig, client.NewPingProber(*clientConfig, connector))
	monitor.OnPromote(func(from, to string) {
		fmt.Printf("+switch-primary %s -> %s\n", from, to)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return monitor.Run(ctx)
}

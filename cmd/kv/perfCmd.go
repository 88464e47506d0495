package kv

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/rKV/cmd/util"
	"github.com/ValentinKolb/rKV/rpc/client"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for rKV servers",
		Long:    "",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)

	// perfClients holds one connection per thread, requests on a client are serialized
	perfClients []*client.Client
	perfNext    atomic.Uint64

	// perfLatencies records the latency of every single request per test
	perfLatencies = metrics.NewRegistry()
)

// perfResult is the outcome of one test
type perfResult struct {
	bench   testing.BenchmarkResult
	latency metrics.Timer
}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of connections to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = util.SplitList(viper.GetString("skip"))

	return nil
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for rKV servers")

	// Print configuration
	config := util.GetClientConfig()
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	// open one connection per thread
	connector, err := util.GetClientConnector(config)
	if err != nil {
		return err
	}
	perfClients = []*client.Client{kvClient}
	for i := 1; i < perfNumThreads; i++ {
		c, err := client.Connect(context.Background(), kvClient.Endpoint(), *config, connector)
		if err != nil {
			return err
		}
		defer c.Close()
		perfClients = append(perfClients, c)
	}

	fmt.Println("staring tests...")

	ctx := context.Background()
	largeValue := make([]byte, perfLargeValueSizeKB*1024)

	tests := []struct {
		name  string
		setup bool
		op    func(c *client.Client, key string, i int) error
	}{
		{"set", false, func(c *client.Client, key string, _ int) error {
			return c.Set(ctx, key, []byte("test"))
		}},
		{"set-large", false, func(c *client.Client, key string, _ int) error {
			return c.Set(ctx, key, largeValue)
		}},
		{"get", true, func(c *client.Client, key string, _ int) error {
			_, _, err := c.Get(ctx, key)
			return err
		}},
		{"get-missing", false, func(c *client.Client, _ string, i int) error {
			_, _, err := c.Get(ctx, fmt.Sprintf("%s/missing-%d", perfKeyPrefix, i%100))
			return err
		}},
		{"publish", false, func(c *client.Client, key string, _ int) error {
			_, err := c.Publish(ctx, key, []byte("test"))
			return err
		}},
		{"ping", false, func(c *client.Client, _ string, _ int) error {
			_, err := c.Ping(ctx, nil)
			return err
		}},
		{"mixed", true, func(c *client.Client, key string, i int) error {
			var err error
			switch i % 3 {
			case 0: // set
				err = c.Set(ctx, key, []byte("test"))
			case 1: // get
				_, _, err = c.Get(ctx, key)
			case 2: // publish
				_, err = c.Publish(ctx, key, []byte("test"))
			}
			return err
		}},
	}

	// Create results map
	results := make(map[string]perfResult)
	var order []string

	for _, test := range tests {
		if shouldSkip(test.name) {
			printResult(test.name, perfResult{})
			continue
		}

		timer := metrics.GetOrRegisterTimer(test.name, perfLatencies)
		getKey, iter := getKeys(test.name)

		// set keys
		if test.setup {
			iter(func(k string) {
				if err := kvClient.Set(ctx, k, []byte("test")); err != nil {
					log.Printf("(%s) - error setting key: %v\n", test.name, err)
				}
			})
		}

		result := testing.Benchmark(func(b *testing.B) {
			b.SetParallelism(perfNumThreads)

			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				c := perfClients[perfNext.Add(1)%uint64(len(perfClients))]
				counter := 0
				for pb.Next() {
					start := time.Now()
					if err := test.op(c, getKey(counter), counter); err != nil {
						log.Printf("(%s) - error: %v\n", test.name, err)
					}
					timer.UpdateSince(start)
					counter++
				}
			})
		})

		results[test.name] = perfResult{bench: result, latency: timer}
		order = append(order, test.name)
		printResult(test.name, results[test.name])
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, order, results, config); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result perfResult) {
	if result.bench.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50 %s\tp99 %s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(result.latency.Percentile(0.5)), time.Duration(result.latency.Percentile(0.99)))
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, order []string, results map[string]perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec",
		"Requests", "LatencyMean", "LatencyP50", "LatencyP99", "LatencyMax",
		"Endpoints", "TimeoutSec", "RetryCount", "Transport",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for _, test := range order {
		result := results[test]
		nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1)
		opsPerSec := 1.0 / (nsPerOp / 1e9)
		latency := result.latency.Snapshot()

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			strconv.FormatInt(latency.Count(), 10),
			time.Duration(latency.Mean()).String(),
			time.Duration(latency.Percentile(0.5)).String(),
			time.Duration(latency.Percentile(0.99)).String(),
			time.Duration(latency.Max()).String(),
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}

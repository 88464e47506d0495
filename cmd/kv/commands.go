package kv

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			if err := kvClient.Set(cmd.Context(), key, []byte(value)); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Gets the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, ok, err := kvClient.Get(cmd.Context(), args[0])
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
	pingCmd = &cobra.Command{
		Use:   "ping [message]",
		Short: "Checks that the server is alive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var message []byte
			if len(args) == 1 {
				message = []byte(args[0])
			}
			reply, err := kvClient.Ping(cmd.Context(), message)
			if err != nil {
				return err
			}
			fmt.Println(string(reply))
			return nil
		},
	}
	publishCmd = &cobra.Command{
		Use:   "publish [channel] [message]",
		Short: "Publishes a message on a channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := kvClient.Publish(cmd.Context(), args[0], []byte(args[1]))
			if err != nil {
				return err
			}
			fmt.Printf("delivered to %d subscriber(s)\n", n)
			return nil
		},
	}
	subscribeCmd = &cobra.Command{
		Use:   "subscribe [channel...]",
		Short: "Subscribes to channels and prints messages until interrupted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			sub, err := kvClient.Subscribe(ctx, args...)
			if err != nil {
				return err
			}
			fmt.Printf("subscribed to %v\n", sub.Channels())

			for {
				msg, err := sub.Receive(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				fmt.Printf("%s: %s\n", msg.Channel, msg.Payload)
			}
		},
	}
)

package main

import (
	"context"
	"fmt"
	"path"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stacksapp/stacks/internal/config"
	"github.com/stacksapp/stacks/internal/payload"
	syncpkg "github.com/stacksapp/stacks/internal/sync"
	"github.com/stacksapp/stacks/internal/transport"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Exchange catalog snapshots through the configured bucket",
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload this device's snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		client, err := newTransportClient(ctx)
		if err != nil {
			fatal("%v", err)
		}
		dev, err := localDevice(ctx)
		if err != nil {
			fatal("failed to load device identity: %v", err)
		}

		p, err := syncpkg.Export(ctx, store, dev)
		if err != nil {
			fatal("export failed: %v", err)
		}
		data, err := p.Encode()
		if err != nil {
			fatal("export failed: %v", err)
		}

		key := payloadKey(dev.ID)
		log.Info(ctx, "pushing snapshot", "key", key, "bytes", len(data))
		if err := client.Upload(ctx, key, data); err != nil {
			fatal("push failed: %v", err)
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{"key": key, "bytes": len(data)})
			return
		}
		color.Green("✓ Pushed snapshot to %s", key)
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull <device-id>",
	Short: "Download another device's snapshot and merge it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		client, err := newTransportClient(ctx)
		if err != nil {
			fatal("%v", err)
		}

		key := payloadKey(args[0])
		data, err := client.Download(ctx, key)
		if err != nil {
			fatal("pull failed: %v", err)
		}
		if data == nil {
			fatal("no snapshot found for device %s", args[0])
		}

		p, err := payload.Decode(data)
		if err != nil {
			fatal("invalid payload: %v", err)
		}

		log.Info(ctx, "merging pulled snapshot", "key", key, "device", p.DeviceID)
		summary, err := syncpkg.Import(ctx, store, p)
		if err != nil {
			fatal("merge failed: %v", err)
		}

		printSummary(summary)
	},
}

func newTransportClient(ctx context.Context) (transport.Client, error) {
	cfg := transport.S3Config{
		Bucket:       config.GetString("s3.bucket"),
		Region:       config.GetString("s3.region"),
		AccessKey:    config.GetString("s3.access-key"),
		SecretKey:    config.GetString("s3.secret-key"),
		BaseEndpoint: config.GetString("s3.endpoint"),
	}
	client, err := transport.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sync is not configured: %w", err)
	}
	return client, nil
}

func payloadKey(deviceID string) string {
	return path.Join(config.GetString("s3.prefix"), deviceID+".json")
}

func init() {
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncPullCmd)
	rootCmd.AddCommand(syncCmd)
}

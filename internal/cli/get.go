//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go.bug.st/fetcher"
	"go.bug.st/fetcher/history"
	"go.bug.st/fetcher/internal/config"
	"go.bug.st/fetcher/internal/logger"
	"go.bug.st/fetcher/sink"
	"go.bug.st/fetcher/ui"
)

type getOptions struct {
	output          string
	bucket          string
	headers         []string
	connectTimeout  time.Duration
	readTimeout     time.Duration
	progressDivider int
	throttle        string
	noProgress      bool
	noHistory       bool
}

// NewGetCmd creates the get command.
func NewGetCmd() *cobra.Command {
	var opts getOptions

	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "Download a resource",
		Long: `Download a single http or https resource.

The response body is written to the file given with --output (default: the
last element of the URL path), or to the object of the same name in the
bucket given with --bucket (file://, mem:// or s3:// URLs).
Interrupting the command stops the transfer at the next block boundary, or
immediately while still connecting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or object key with --bucket (\"-\" for stdout)")
	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "write to a blob bucket URL instead of a local file")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "request header \"Name: value\" (repeatable)")
	cmd.Flags().DurationVar(&opts.connectTimeout, "connect-timeout", 0, "connection timeout (0 means no timeout)")
	cmd.Flags().DurationVar(&opts.readTimeout, "read-timeout", 0, "read timeout (0 means no timeout)")
	cmd.Flags().IntVar(&opts.progressDivider, "progress-divider", 0, "report progress every N percent (0 means every block)")
	cmd.Flags().StringVar(&opts.throttle, "throttle", "", "maximum throughput, e.g. 512KiB")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "do not show the progress bar")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record the transfer in the history")

	return cmd
}

func runGet(cmd *cobra.Command, rawURL string, opts getOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg, err = applyGetFlags(cmd, cfg, opts); err != nil {
		return err
	}

	headers := fetcher.HeadersFromMap(cfg.Headers)
	for _, line := range opts.headers {
		name, value, err := config.ParseHeader(line)
		if err != nil {
			return err
		}
		headers = append(headers, fetcher.Header{Name: name, Value: value})
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dest, closeDest, err := openDestination(ctx, cmd, rawURL, opts)
	if err != nil {
		return err
	}
	defer closeDest()

	req := fetcher.Request{
		URL:             rawURL,
		Destination:     dest,
		Headers:         headers,
		ConnectTimeout:  cfg.ConnectTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		ProgressDivider: cfg.ProgressDivider,
		ThrottleRate:    cfg.ThrottleRate,
	}

	// The transfer is ended by Stop, so that an interrupted download still
	// reports the bytes written so far.
	transferCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	guard := newInterruptGuard(cancel)

	listeners := fetcher.Listeners{guard}
	if !opts.noProgress {
		listeners = append(listeners, ui.NewBar(cmd.ErrOrStderr(), filepath.Base(dest.String())))
	}
	var listener fetcher.Listener = listeners
	if !opts.noHistory {
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := history.NewRecorder(store, req, listeners)
		if err != nil {
			return err
		}
		logger.Debug("Recording transfer", logrus.Fields{"id": rec.ID()})
		listener = rec
	}

	transfer := fetcher.NewWithConfig(req, fetcher.Config{
		TLSVersion: cfg.TLSVersion,
		Logger:     logger.GetLogger(),
	}, listener)

	res := runTransfer(ctx, transferCtx, transfer, guard)

	if res.Err != nil {
		return fmt.Errorf("download failed: %w", res.Err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("download failed: server returned status %d", res.StatusCode)
	}
	logger.Success("Download completed", logrus.Fields{
		"destination": dest.String(),
		"size":        humanize.IBytes(uint64(res.BytesWritten)),
	})
	return nil
}

// applyGetFlags overrides the configuration with the flags set on the
// command line.
func applyGetFlags(cmd *cobra.Command, cfg config.Config, opts getOptions) (config.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("connect-timeout") {
		cfg.ConnectTimeout = opts.connectTimeout
	}
	if flags.Changed("read-timeout") {
		cfg.ReadTimeout = opts.readTimeout
	}
	if flags.Changed("progress-divider") {
		cfg.ProgressDivider = opts.progressDivider
	}
	if flags.Changed("throttle") {
		rate, err := config.ParseRate(opts.throttle)
		if err != nil {
			return cfg, fmt.Errorf("invalid --throttle: %w", err)
		}
		cfg.ThrottleRate = rate
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// openDestination builds the destination of the download. The returned
// function releases the resources held by it.
func openDestination(ctx context.Context, cmd *cobra.Command, rawURL string, opts getOptions) (fetcher.Destination, func(), error) {
	name := opts.output
	if name == "" {
		name = nameFromURL(rawURL)
	}

	if opts.bucket != "" {
		bucket, err := sink.OpenBucket(ctx, opts.bucket)
		if err != nil {
			return nil, nil, err
		}
		closeBucket := func() {
			if err := bucket.Close(); err != nil {
				logger.Warn("Error closing bucket", logrus.Fields{"error": err})
			}
		}
		return sink.Blob{Bucket: bucket, Key: name}, closeBucket, nil
	}

	if name == "-" {
		return sink.Writer{W: cmd.OutOrStdout(), Name: "stdout"}, func() {}, nil
	}
	return sink.File(name), func() {}, nil
}

// nameFromURL returns the last element of the URL path, or "index.html".
func nameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "index.html"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "index.html"
	}
	return name
}

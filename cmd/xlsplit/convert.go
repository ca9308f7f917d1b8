package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/output"
)

var (
	outputDir    string
	sheetName    string
	chunkSize    int
	batchSize    int
	withManifest bool
	pretty       bool
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [input.xlsx]",
		Short: "Convert a sheet into CSV chunk files",
		Args:  cobra.ExactArgs(1),
		RunE:  runConvert,
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for chunk files (default: config output_dir)")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet to convert (default: first sheet)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Records per chunk file (default: 100000)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Rows read between progress updates (default: 10000)")
	cmd.Flags().BoolVar(&withManifest, "manifest", false, "Write manifest.json next to the chunks")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print the JSON summary")
	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if err := requireFile(inputPath); err != nil {
		return err
	}

	conv := cfg.Conversion
	flags := cmd.Flags()
	if flags.Changed("output") {
		conv.OutputDir = outputDir
	}
	if flags.Changed("chunk-size") {
		conv.ChunkSize = chunkSize
	}
	if flags.Changed("batch-size") {
		conv.BatchSize = batchSize
	}
	if flags.Changed("manifest") {
		conv.Manifest = withManifest
	}

	sink, err := output.NewDirSink(conv.OutputDir)
	if err != nil {
		return err
	}

	opts := xlsplit.Options{
		BatchSize: conv.BatchSize,
		Content:   xlsplit.ContentMode(conv.ContentMode),
		Sink:      sink.Write,
		Logger:    log,
	}
	req := xlsplit.ConvertRequest{
		Path:          inputPath,
		SheetName:     sheetName,
		ChunkCapacity: conv.ChunkSize,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := xlsplit.Convert(ctx, req, opts, logProgress)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if conv.Manifest {
		m := output.NewManifest(filepath.Base(inputPath), conv.ChunkSize, result, time.Now())
		path, err := output.WriteManifest(sink.Dir(), m)
		if err != nil {
			return err
		}
		log.WithField("path", path).Info("manifest written")
	}

	jsonData, err := output.ToJSON(result, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}

func logProgress(ev xlsplit.Event) {
	switch ev := ev.(type) {
	case xlsplit.ProgressEvent:
		log.WithFields(logrus.Fields{
			"percent":   ev.Percent,
			"processed": ev.ProcessedCount,
			"total":     ev.TotalCount,
		}).Info(ev.Message)
	case xlsplit.ChunkReadyEvent:
		log.WithFields(logrus.Fields{
			"chunk":   ev.Chunk.FileName,
			"records": ev.Chunk.RecordCount,
			"bytes":   ev.Chunk.SizeBytes,
		}).Info("chunk written")
	case xlsplit.CancelledEvent:
		log.Warn("conversion cancelled")
	}
}

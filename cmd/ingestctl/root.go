package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"docingest/internal/app"
	"docingest/internal/auth"
	"docingest/internal/config"
	"docingest/internal/logger"
	"docingest/internal/sanitize"
	"docingest/internal/storage"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ingestctl",
		Short:         "Operate the document ingestion pipeline from the command line",
		SilenceUsage: true,
	}
	root.AddCommand(newFixtureCmd(), newTokenCmd())
	return root
}

func newFixtureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Manage and ingest fixture payloads",
	}

	var owner string
	ingest := &cobra.Command{
		Use:   "ingest KEY...",
		Short: "Run fixtures from FIXTURE_DIR or the MinIO bucket through the pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logger.New(cmd.ErrOrStderr(), cfg.Location())

			pipeline, err := app.NewPipeline(cmd.Context(), cfg, log, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer pipeline.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, key := range args {
				doc, err := pipeline.Service.IngestFixture(cmd.Context(), key, owner)
				if err != nil {
					return fmt.Errorf("ingest %s: %w", key, err)
				}
				if err := enc.Encode(doc); err != nil {
					return err
				}
			}
			return nil
		},
	}
	ingest.Flags().StringVar(&owner, "owner", "", "owner identity recorded on the documents")
	_ = ingest.MarkFlagRequired("owner")

	var key string
	put := &cobra.Command{
		Use:   "put FILE",
		Short: "Copy a local file into the fixture source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := app.OpenFixtures(cmd.Context(), config.Load())
			if err != nil {
				return err
			}
			if src == nil {
				return fmt.Errorf("set FIXTURE_DIR or MINIO_ENDPOINT")
			}
			if key == "" {
				key = filepath.Base(args[0])
			}
			info, err := putFile(cmd.Context(), src, key, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", info.Key, info.Size)
			return nil
		},
	}
	put.Flags().StringVar(&key, "key", "", "object key (defaults to the file name)")

	cmd.AddCommand(ingest, put)
	return cmd
}

func putFile(ctx context.Context, dst storage.Storage, key, path string) (storage.ObjectInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	return dst.Put(ctx, key, f, storage.PutObjectOptions{
		Size:        st.Size(),
		ContentType: sanitize.ContentType(path, ""),
	})
}

func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token SUBJECT",
		Short: "Issue a bearer token for SUBJECT signed with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if ttl == 0 {
				ttl = time.Duration(cfg.Auth.TTLMin) * time.Minute
			}
			tokens, err := auth.NewTokens(cfg.Auth.Secret, ttl)
			if err != nil {
				return err
			}
			tok, err := tokens.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_TTL_MIN)")
	return cmd
}

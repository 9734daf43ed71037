package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"todo-api/internal/repository/sqlite"
	"todo-api/internal/storage"
)

func init() {
	BackupCommand.Flags().String("output", "", "also keep the snapshot at this local path")
	BackupCommand.Flags().Bool("local-only", false, "write the snapshot to --output and skip the upload")
	BackupCommand.Flags().Int("keep", 0, "delete all but the newest N remote backups (0 keeps everything)")

	BackupCommand.AddCommand(&BackupListCommand)
	RootCmd.AddCommand(&BackupCommand)
}

var BackupCommand = cobra.Command{
	Use:   "backup",
	Short: "Snapshot the database and upload it to object storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		localOnly, _ := cmd.Flags().GetBool("local-only")
		keep, _ := cmd.Flags().GetInt("keep")

		if localOnly && output == "" {
			return errors.New("--local-only needs --output")
		}
		if !localOnly && cfg.Storage.Bucket == "" {
			return errors.New("storage bucket is required (storage.bucket / TODO_STORAGE_BUCKET)")
		}

		db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		snapshot := output
		if snapshot == "" {
			dir, err := os.MkdirTemp("", "todo-backup-")
			if err != nil {
				return fmt.Errorf("create temp dir: %w", err)
			}
			defer os.RemoveAll(dir)
			snapshot = filepath.Join(dir, "snapshot.db")
		}

		ctx := cmd.Context()
		if err := sqlite.Snapshot(ctx, db, snapshot); err != nil {
			return err
		}
		logger.WithField("path", snapshot).Info("database snapshot written")
		if localOnly {
			return nil
		}

		svc, err := newStorage(cmd)
		if err != nil {
			return err
		}

		key := storage.BackupKey(cfg.Storage.KeyPrefix, time.Now())
		location, err := svc.UploadFile(ctx, snapshot, storage.UploadOptions{
			Bucket: cfg.Storage.Bucket,
			Key:    key,
		})
		if err != nil {
			return err
		}
		logger.WithField("location", location).Info("backup uploaded")
		fmt.Fprintln(cmd.OutOrStdout(), location)

		if keep <= 0 {
			return nil
		}
		objects, err := svc.ListObjects(ctx, cfg.Storage.Bucket, backupPrefix())
		if err != nil {
			return err
		}
		expired := storage.ExpiredBackups(objects, keep)
		if len(expired) == 0 {
			return nil
		}
		if err := svc.DeleteObjects(ctx, cfg.Storage.Bucket, expired); err != nil {
			return err
		}
		logger.WithField("count", len(expired)).Info("old backups removed")
		return nil
	},
}

var BackupListCommand = cobra.Command{
	Use:   "list",
	Short: "List the uploaded backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Storage.Bucket == "" {
			return errors.New("storage bucket is required (storage.bucket / TODO_STORAGE_BUCKET)")
		}

		svc, err := newStorage(cmd)
		if err != nil {
			return err
		}
		objects, err := svc.ListObjects(cmd.Context(), cfg.Storage.Bucket, backupPrefix())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tSIZE\tLAST MODIFIED")
		for _, obj := range objects {
			modified := "-"
			if obj.LastModified != nil {
				modified = obj.LastModified.UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%d\t%s\n", obj.Key, obj.Size, modified)
		}
		return w.Flush()
	},
}

func newStorage(cmd *cobra.Command) (storage.Service, error) {
	client, err := storage.NewS3Client(cmd.Context(), storage.ClientConfig{
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Profile:  cfg.AWS.Profile,
	})
	if err != nil {
		return nil, err
	}
	logger.Debugf("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}

func backupPrefix() string {
	prefix := strings.Trim(cfg.Storage.KeyPrefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

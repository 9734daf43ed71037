package storage

import (
	"context"
	"path"
	"sort"
	"strings"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	Bucket      string
	Key         string
	ContentType string
}

// Service keeps database backups in remote object storage.
type Service interface {
	UploadFile(ctx context.Context, localPath string, opts UploadOptions) (string, error)
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	DeleteObjects(ctx context.Context, bucket string, keys []string) error
}

const backupTimeLayout = "20060102T150405Z"

// BackupKey names the snapshot taken at the given instant, e.g.
// "todo-backups/20240102T030405Z.db". Keys sort in chronological order.
func BackupKey(prefix string, at time.Time) string {
	name := at.UTC().Format(backupTimeLayout) + ".db"
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// ExpiredBackups returns the keys of all backups except the newest keep ones.
// keep <= 0 retains everything.
func ExpiredBackups(objects []ObjectInfo, keep int) []string {
	if keep <= 0 || len(objects) <= keep {
		return nil
	}

	sorted := make([]ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, ".db") {
			sorted = append(sorted, obj)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Key > sorted[j].Key
	})
	if len(sorted) <= keep {
		return nil
	}

	keys := make([]string, 0, len(sorted)-keep)
	for _, obj := range sorted[keep:] {
		keys = append(keys, obj.Key)
	}
	return keys
}

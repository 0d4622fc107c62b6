package reliability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/prismdash/prism/internal/clients/account"
	"github.com/prismdash/prism/internal/scheduler/base"
)

const (
	snapshotPrefix     = "prism-snapshot-"
	snapshotTimeLayout = "20060102T150405"
	minSnapshotsToKeep = 3
)

// ObjectStore is the subset of the S3 client the archiver needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader) error
	List(ctx context.Context, prefix string) ([]types.Object, error)
	Delete(ctx context.Context, key string) error
}

// PNGRenderer renders the all-time portfolio chart for one account.
type PNGRenderer interface {
	GetPortfolioPNG(accountID, period string) ([]byte, error)
}

// SnapshotInfo describes one archived snapshot.
type SnapshotInfo struct {
	Key       string    `json:"key"`
	AccountID string    `json:"account_id"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
}

// SnapshotArchiver renders portfolio charts to PNG and archives them in
// object storage, so there is a visual record of every account even if
// the upstream APIs lose history.
type SnapshotArchiver struct {
	store    ObjectStore
	renderer PNGRenderer
	accounts account.ClientInterface
	log      zerolog.Logger
}

// NewSnapshotArchiver creates a new snapshot archiver.
func NewSnapshotArchiver(
	store ObjectStore,
	renderer PNGRenderer,
	accountClient account.ClientInterface,
	log zerolog.Logger,
) *SnapshotArchiver {
	return &SnapshotArchiver{
		store:    store,
		renderer: renderer,
		accounts: accountClient,
		log:      log.With().Str("service", "snapshot_archiver").Logger(),
	}
}

// ArchiveOnce renders the all-time chart for every account and uploads
// the batch under a single timestamp. Accounts that cannot render (for
// example with fewer than two data points) are skipped.
func (a *SnapshotArchiver) ArchiveOnce(ctx context.Context) error {
	accounts, err := a.accounts.ListAccounts()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	timestamp := time.Now().UTC().Format(snapshotTimeLayout)
	uploaded := 0

	for _, acct := range accounts {
		png, err := a.renderer.GetPortfolioPNG(acct.ID, "ALL")
		if err != nil {
			a.log.Warn().Err(err).
				Str("account", acct.ID).
				Msg("Failed to render snapshot")
			continue
		}

		key := fmt.Sprintf("%s%s-%s.png", snapshotPrefix, acct.ID, timestamp)
		if err := a.store.Upload(ctx, key, bytes.NewReader(png)); err != nil {
			a.log.Error().Err(err).
				Str("key", key).
				Msg("Failed to upload snapshot")
			continue
		}

		uploaded++
	}

	a.log.Info().
		Int("accounts", len(accounts)).
		Int("uploaded", uploaded).
		Msg("Snapshot archive completed")

	return nil
}

// ListSnapshots returns all archived snapshots, newest first.
func (a *SnapshotArchiver) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	objects, err := a.store.List(ctx, snapshotPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	snapshots := make([]SnapshotInfo, 0, len(objects))
	for _, obj := range objects {
		if obj.Key == nil {
			continue
		}

		info, ok := a.parseSnapshotKey(*obj.Key)
		if !ok {
			continue
		}
		if obj.Size != nil {
			info.SizeBytes = *obj.Size
		}

		snapshots = append(snapshots, info)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})

	return snapshots, nil
}

// parseSnapshotKey recovers account and timestamp from an object key of
// the form prism-snapshot-<account>-<timestamp>.png. Account IDs may
// contain dashes; the timestamp never does.
func (a *SnapshotArchiver) parseSnapshotKey(key string) (SnapshotInfo, bool) {
	if !strings.HasPrefix(key, snapshotPrefix) || !strings.HasSuffix(key, ".png") {
		return SnapshotInfo{}, false
	}

	name := strings.TrimSuffix(strings.TrimPrefix(key, snapshotPrefix), ".png")
	i := strings.LastIndex(name, "-")
	if i <= 0 {
		a.log.Warn().Str("key", key).Msg("Unparseable snapshot key")
		return SnapshotInfo{}, false
	}

	timestamp, err := time.Parse(snapshotTimeLayout, name[i+1:])
	if err != nil {
		a.log.Warn().Str("key", key).Msg("Failed to parse timestamp from snapshot key")
		return SnapshotInfo{}, false
	}

	return SnapshotInfo{
		Key:       key,
		AccountID: name[:i],
		Timestamp: timestamp,
	}, true
}

// RotateOldSnapshots deletes snapshots older than the retention period.
// Keeps a minimum of 3 snapshots regardless of age; retentionDays 0
// keeps everything.
func (a *SnapshotArchiver) RotateOldSnapshots(ctx context.Context, retentionDays int) error {
	snapshots, err := a.ListSnapshots(ctx)
	if err != nil {
		return err
	}

	if len(snapshots) <= minSnapshotsToKeep {
		a.log.Debug().Int("count", len(snapshots)).Msg("Too few snapshots to rotate")
		return nil
	}

	var cutoff time.Time
	if retentionDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -retentionDays)
	}

	deleted := 0
	for i, snapshot := range snapshots {
		if i < minSnapshotsToKeep {
			continue
		}
		if retentionDays == 0 {
			continue
		}

		if snapshot.Timestamp.Before(cutoff) {
			if err := a.store.Delete(ctx, snapshot.Key); err != nil {
				a.log.Error().Err(err).
					Str("key", snapshot.Key).
					Msg("Failed to delete old snapshot")
				continue
			}

			a.log.Info().
				Str("key", snapshot.Key).
				Time("timestamp", snapshot.Timestamp).
				Msg("Deleted old snapshot")

			deleted++
		}
	}

	a.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(snapshots)-deleted).
		Msg("Snapshot rotation completed")

	return nil
}

// SnapshotJob runs the archiver on a schedule.
type SnapshotJob struct {
	base.JobBase
	archiver      *SnapshotArchiver
	retentionDays int
	log           zerolog.Logger
}

// NewSnapshotJob creates a new snapshot job.
func NewSnapshotJob(archiver *SnapshotArchiver, retentionDays int, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		archiver:      archiver,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "portfolio_snapshots").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "portfolio_snapshots"
}

// Run archives a snapshot batch, then rotates out expired ones.
func (j *SnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := j.archiver.ArchiveOnce(ctx); err != nil {
		return err
	}
	return j.archiver.RotateOldSnapshots(ctx, j.retentionDays)
}

// Package engine implements the four backup pipelines (snapshot, restore,
// prune, verify) and the storage-accounting listing, each built from a
// Store-scoped unit of work, a FileSystemGateway, and an events.Sink —
// the three collaborators a BackupEngine is constructed from, per the
// builder/constructor pattern rather than a process-wide singleton.
// Hashing is not injected: the engine calls pkg/hash directly.
package engine

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cuemby/vaultkeep/pkg/catalog"
	"github.com/cuemby/vaultkeep/pkg/events"
	"github.com/cuemby/vaultkeep/pkg/fsgateway"
	"github.com/cuemby/vaultkeep/pkg/hash"
	"github.com/cuemby/vaultkeep/pkg/log"
	"github.com/cuemby/vaultkeep/pkg/metrics"
	"github.com/cuemby/vaultkeep/pkg/store"
	"github.com/cuemby/vaultkeep/pkg/types"
	"github.com/cuemby/vaultkeep/pkg/vkerrors"
)

const (
	defaultSnapshotProgressInterval = 100
	restoreProgressInterval         = 50
)

// BackupEngine drives snapshot creation, restore, prune, and verify
// against one Store.
type BackupEngine struct {
	store            *store.Store
	fs               fsgateway.Gateway
	sink             events.Sink
	excludePatterns  []string
	progressInterval int
}

// Option configures a BackupEngine at construction time.
type Option func(*BackupEngine)

// WithExcludePatterns sets shell-glob patterns matched against each
// traversed relative path during snapshot creation.
func WithExcludePatterns(patterns []string) Option {
	return func(e *BackupEngine) { e.excludePatterns = patterns }
}

// WithProgressInterval overrides the default 100-files-per-event cadence
// for snapshot creation (spec's progress_interval config key).
func WithProgressInterval(n int) Option {
	return func(e *BackupEngine) {
		if n > 0 {
			e.progressInterval = n
		}
	}
}

// New builds a BackupEngine over st, fs, and sink.
func New(st *store.Store, fs fsgateway.Gateway, sink events.Sink, opts ...Option) *BackupEngine {
	e := &BackupEngine{
		store:            st,
		fs:               fs,
		sink:             sink,
		progressInterval: defaultSnapshotProgressInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *BackupEngine) publish(typ events.EventType, msg string, meta map[string]string) {
	if e.sink == nil {
		return
	}
	e.sink.Publish(&events.Event{Type: typ, Message: msg, Metadata: meta})
}

// Snapshot captures source_root into a new snapshot and returns its id.
// It returns a *vkerrors.Error of kind SourceMissing if source_root does
// not exist, ReadFailed if a file could not be read (the whole operation
// is rolled back), or TransactionFailed for any other substrate failure.
func (e *BackupEngine) Snapshot(sourceRoot string) (uint64, error) {
	logger := log.WithComponent("engine")
	logger.Debug().Str("source_root", sourceRoot).Msg("snapshot requested")
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.SnapshotDuration)

	if !e.fs.DirectoryExists(sourceRoot) {
		err := vkerrors.New(vkerrors.KindSourceMissing, sourceRoot)
		e.publish(events.EventSnapshotFailed, "source directory missing", map[string]string{"source_root": sourceRoot})
		return 0, err
	}

	e.publish(events.EventSnapshotStarted, "snapshot started", map[string]string{"source_root": sourceRoot})

	var snapshotID uint64
	processed := 0

	err := e.store.Update(func(tx *store.Tx) error {
		si := catalog.NewSnapshotIndex(tx)
		cc := catalog.NewContentCatalog(tx)

		id, err := si.Create(sourceRoot, time.Now().UTC())
		if err != nil {
			return err
		}
		snapshotID = id
		log.WithSnapshot(snapshotID).Debug().Str("source_root", sourceRoot).Msg("snapshot: header created, walking tree")

		return e.walkAndInsert(cc, si, snapshotID, sourceRoot, "", &processed, true)
	})
	if err != nil {
		e.publish(events.EventSnapshotFailed, err.Error(), map[string]string{"source_root": sourceRoot})
		return 0, err
	}

	e.publish(events.EventSnapshotDone, "snapshot completed", map[string]string{
		"snapshot_id": fmt.Sprint(snapshotID),
		"files":       fmt.Sprint(processed),
	})
	return snapshotID, nil
}

// walkAndInsert recurses depth-first into dir (absolute path), enumerating
// files before child directories, inserting a ContentBlob (if new) and a
// FileEntry for each file under relPrefix (dir's path relative to the
// snapshot's source_root, using forward slashes). isRoot marks the
// top-level call (dir == the snapshot's source_root): a root ListFiles
// failure aborts the snapshot, since there is nothing to walk at all,
// while a ListSubdirectories failure at the root, and either failure at
// any deeper level, is logged and skipped per spec
// §4.4.1 and the §9 open-question resolution — a subdirectory that fails
// to enumerate (whether its files or its child directories) must not
// abort the rest of the snapshot.
func (e *BackupEngine) walkAndInsert(cc *catalog.ContentCatalog, si *catalog.SnapshotIndex, snapshotID uint64, dir, relPrefix string, processed *int, isRoot bool) error {
	files, err := e.fs.ListFiles(dir)
	if err != nil {
		if isRoot {
			return vkerrors.Wrap(vkerrors.KindReadFailed, dir, err)
		}
		log.WithSnapshot(snapshotID).Warn().Str("path", dir).Err(err).Msg("failed to enumerate subdirectory files, skipping")
		return nil
	}

	for _, abs := range files {
		name := filepath.Base(abs)
		rel := joinRelative(relPrefix, name)

		if e.excluded(rel) {
			continue
		}

		if err := e.insertFile(cc, si, snapshotID, abs, rel, name); err != nil {
			metrics.FilesProcessedTotal.WithLabelValues("snapshot", "error").Inc()
			return err
		}
		metrics.FilesProcessedTotal.WithLabelValues("snapshot", "ok").Inc()

		*processed++
		if *processed%e.progressInterval == 0 {
			e.publish(events.EventFileProcessed, "snapshot progress", map[string]string{
				"snapshot_id": fmt.Sprint(snapshotID),
				"files":       fmt.Sprint(*processed),
			})
		}
	}

	subdirs, err := e.fs.ListSubdirectories(dir)
	if err != nil {
		log.WithSnapshot(snapshotID).Warn().Str("path", dir).Err(err).Msg("failed to enumerate subdirectory, skipping")
		return nil
	}

	for _, sub := range subdirs {
		name := filepath.Base(sub)
		rel := joinRelative(relPrefix, name)
		if e.excluded(rel) {
			continue
		}
		if err := e.walkAndInsert(cc, si, snapshotID, sub, rel, processed, false); err != nil {
			return err
		}
	}

	return nil
}

func (e *BackupEngine) insertFile(cc *catalog.ContentCatalog, si *catalog.SnapshotIndex, snapshotID uint64, absPath, rel, name string) error {
	log.WithPath(absPath).Debug().Uint64("snapshot_id", snapshotID).Msg("snapshot: reading file")

	data, err := e.fs.ReadFile(absPath)
	if err != nil {
		return err
	}

	digest, err := hash.Compute(data)
	if err != nil {
		return err
	}

	exists, err := cc.Exists(digest)
	if err != nil {
		return err
	}
	if !exists {
		blob := types.ContentBlob{
			Digest:    digest,
			Bytes:     data,
			Size:      int64(len(data)),
			CreatedAt: time.Now().UTC(),
		}
		if err := cc.Insert(blob); err != nil && !vkerrors.Is(err, vkerrors.KindDuplicateDigest) {
			return err
		}
	}

	_, err = si.AddEntry(snapshotID, digest, rel, name)
	return err
}

func (e *BackupEngine) excluded(rel string) bool {
	for _, pattern := range e.excludePatterns {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}

func joinRelative(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + strings.TrimPrefix(name, "/")
}

package datasources

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/internal/subscription"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
	"github.com/samber/lo"
)

// RecordFileExtension is the extension of the decoded record files read by DirectoryDatasource.
const RecordFileExtension = ".rcd.json"

const defaultDirectoryBatchSize = 10

// Make sure to implement the Datasource interface
var _ Datasource[*types.RecordFile] = (*DirectoryDatasource)(nil)

// DirectoryDatasource reads decoded record files from a local directory.
// Files are named so that lexical order is consensus order.
type DirectoryDatasource struct {
	dir       string
	batchSize int
}

func NewDirectory(dir string, batchSize int) *DirectoryDatasource {
	if batchSize <= 0 {
		batchSize = defaultDirectoryBatchSize
	}
	return &DirectoryDatasource{
		dir:       dir,
		batchSize: batchSize,
	}
}

func (d *DirectoryDatasource) Name() string {
	return "directory"
}

// Fetch reads record files with index in [from, to].
//
//   - from: record file index to start fetching, if -1, it will start from the first file
//   - to: record file index to stop fetching, if -1, it will fetch until the last file
func (d *DirectoryDatasource) Fetch(ctx context.Context, from, to int64) ([]*types.RecordFile, error) {
	ch := make(chan []*types.RecordFile)
	subscription, err := d.FetchAsync(ctx, from, to, ch)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer subscription.Unsubscribe()

	files := make([]*types.RecordFile, 0)
	for {
		select {
		case f := <-ch:
			files = append(files, f...)
		case <-subscription.Done():
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "context done")
			}
			return files, nil
		case err := <-subscription.Err():
			if err != nil {
				return nil, errors.Wrap(err, "got error while fetch async")
			}
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "context done")
		}
	}
}

// FetchAsync reads record files asynchronously (non-blocking), in batches.
func (d *DirectoryDatasource) FetchAsync(ctx context.Context, from, to int64, ch chan<- []*types.RecordFile) (*subscription.ClientSubscription[[]*types.RecordFile], error) {
	ctx = logger.WithContext(ctx,
		slogx.String("package", "datasources"),
		slogx.String("datasource", d.Name()),
	)

	paths, err := d.listFiles()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list record files")
	}

	subscription := subscription.NewSubscription(ch)
	go func() {
		defer subscription.CloseSend()

		batch := make([]*types.RecordFile, 0, d.batchSize)
		flush := func() bool {
			if len(batch) == 0 {
				return true
			}
			if err := subscription.Send(ctx, batch); err != nil {
				if !errors.Is(err, errs.Closed) {
					logger.WarnContext(ctx, "Failed to send record files to subscription client", slogx.Error(err))
				}
				return false
			}
			batch = make([]*types.RecordFile, 0, d.batchSize)
			return true
		}

		for _, path := range paths {
			if ctx.Err() != nil {
				return
			}
			file, err := readRecordFile(path)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to read record file", slogx.String("path", path), slogx.Error(err))
				if err := subscription.SendError(ctx, errors.WithStack(err)); err != nil {
					logger.WarnContext(ctx, "Failed to send datasource error to subscription client", slogx.Error(err))
				}
				return
			}
			if from >= 0 && file.Index < from {
				continue
			}
			if to >= 0 && file.Index > to {
				break
			}
			batch = append(batch, file)
			if len(batch) >= d.batchSize && !flush() {
				return
			}
		}
		flush()
	}()

	return subscription.Client(), nil
}

func (d *DirectoryDatasource) GetRecordFileHeader(ctx context.Context, index int64) (types.RecordFileHeader, error) {
	paths, err := d.listFiles()
	if err != nil {
		return types.RecordFileHeader{}, errors.Wrap(err, "failed to list record files")
	}
	for _, path := range paths {
		file, err := readRecordFile(path)
		if err != nil {
			return types.RecordFileHeader{}, errors.WithStack(err)
		}
		if file.Index == index {
			return file.Header(), nil
		}
	}
	return types.RecordFileHeader{}, errors.Wrapf(errs.NotFound, "record file %d not found", index)
}

func (d *DirectoryDatasource) listFiles() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read directory %s", d.dir)
	}
	paths := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		if e.IsDir() || !strings.HasSuffix(e.Name(), RecordFileExtension) {
			return "", false
		}
		return filepath.Join(d.dir, e.Name()), true
	})
	slices.Sort(paths)
	return paths, nil
}

func readRecordFile(path string) (*types.RecordFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read %s", path)
	}
	var file types.RecordFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(errs.DataIntegrity, "can't decode %s: %v", path, err)
	}
	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(path), RecordFileExtension)
	}
	if file.Count == 0 {
		file.Count = int64(len(file.Items))
	}
	return &file, nil
}

package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/gaze-network/ledger-importer/common"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
	"github.com/gaze-network/ledger-importer/pkg/reportingclient"
)

const reportTimeout = 10 * time.Second

// Reporter is the part of *reportingclient.ReportingClient the reporting publisher uses.
type Reporter interface {
	SubmitRecordFileReport(ctx context.Context, payload reportingclient.SubmitRecordFileReportPayload) error
}

var (
	_ Reporter       = (*reportingclient.ReportingClient)(nil)
	_ BatchPublisher = (*ReportingPublisher)(nil)
)

// ReportingPublisher reports every committed record file. Reports are sent in the background, a
// slow or failing reporting service never delays the next file.
type ReportingPublisher struct {
	reporter      Reporter
	network       common.Network
	clientVersion string
	reports       chan reportingclient.SubmitRecordFileReportPayload
	done          chan struct{}
	closeOnce     sync.Once
}

func NewReportingPublisher(reporter Reporter, network common.Network, clientVersion string) *ReportingPublisher {
	p := &ReportingPublisher{
		reporter:      reporter,
		network:       network,
		clientVersion: clientVersion,
		reports:       make(chan reportingclient.SubmitRecordFileReportPayload, 64),
		done:          make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *ReportingPublisher) Name() string {
	return "reporting"
}

func (p *ReportingPublisher) Enqueue([]domain.Model) {}

func (p *ReportingPublisher) OnError(context.Context) {}

// OnEnd queues the report of file. When the queue is full the report is dropped, the next one
// supersedes it.
func (p *ReportingPublisher) OnEnd(ctx context.Context, file *types.RecordFile) error {
	payload := reportingclient.SubmitRecordFileReportPayload{
		Type:          common.ModuleImporter.String(),
		ClientVersion: p.clientVersion,
		Network:       p.network,
		Name:          file.Name,
		Index:         file.Index,
		Hash:          file.Hash,
		PreviousHash:  file.PreviousHash,
		ConsensusEnd:  file.ConsensusEnd,
		Count:         file.Count,
	}
	select {
	case p.reports <- payload:
	default:
		logger.DebugContext(ctx, "Reporting queue is full, dropped record file report", slogx.String(logger.RecordFileKey, file.Name))
	}
	return nil
}

// Close stops the background sender after the queued reports are sent.
func (p *ReportingPublisher) Close() {
	p.closeOnce.Do(func() {
		close(p.reports)
	})
	<-p.done
}

func (p *ReportingPublisher) run() {
	defer close(p.done)
	ctx := logger.WithContext(context.Background(), slogx.String("package", "publisher"), slogx.String("publisher", p.Name()))
	for payload := range p.reports {
		ctx, cancel := context.WithTimeout(ctx, reportTimeout)
		if err := p.reporter.SubmitRecordFileReport(ctx, payload); err != nil {
			logger.WarnContext(ctx, "Failed to submit record file report", slogx.Error(err), slogx.String(logger.RecordFileKey, payload.Name))
		}
		cancel()
	}
}

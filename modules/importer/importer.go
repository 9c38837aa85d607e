// Package importer wires the record importer: datasource, storage, the batch coordinator, its
// publishers and the HTTP API.
package importer

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/datasources"
	"github.com/gaze-network/ledger-importer/core/indexer"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/internal/config"
	"github.com/gaze-network/ledger-importer/internal/postgres"
	importerapi "github.com/gaze-network/ledger-importer/modules/importer/api"
	"github.com/gaze-network/ledger-importer/modules/importer/batch"
	importerdatagateway "github.com/gaze-network/ledger-importer/modules/importer/datagateway"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/gaze-network/ledger-importer/modules/importer/processor"
	"github.com/gaze-network/ledger-importer/modules/importer/publisher"
	"github.com/gaze-network/ledger-importer/modules/importer/publisher/kafkasink"
	importermemory "github.com/gaze-network/ledger-importer/modules/importer/repository/memory"
	importerpostgres "github.com/gaze-network/ledger-importer/modules/importer/repository/postgres"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
	"github.com/gaze-network/ledger-importer/pkg/reportingclient"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"
)

func New(injector do.Injector) (indexer.IndexerWorker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	importerConf := conf.Modules.Importer
	if err := importerConf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid importer configuration")
	}

	var importerDg importerdatagateway.ImporterDataGateway
	var cleanupFuncs []func(context.Context) error
	switch strings.ToLower(importerConf.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, importerConf.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "Invalid Postgres configuration for importer")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		importerDg = importerpostgres.NewRepository(pg)
	case "memory":
		logger.WarnContext(ctx, "Importer uses in-memory storage, imported data is lost on exit")
		importerDg = importermemory.NewRepository()
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for importer is not supported", importerConf.Database)
	}

	var recordFileDatasource datasources.Datasource[*types.RecordFile]
	switch strings.ToLower(importerConf.Datasource) {
	case "directory":
		recordFileDatasource = datasources.NewDirectory(importerConf.DatasourcePath, importerConf.DatasourceBatchSize)
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q datasource is not supported", importerConf.Datasource)
	}

	// Publishers
	topicMessages := publisher.NewTopicMessagePublisher(importerConf.Publisher.TopicMessages.Enabled, importerConf.Publisher.TopicMessages.BufferSize)
	contractLogs := publisher.NewContractLogPublisher(importerConf.Publisher.ContractLogs.Enabled, importerConf.Publisher.ContractLogs.BufferSize)
	if kafkaConf := importerConf.Publisher.Kafka; kafkaConf.Enabled {
		sink, err := kafkasink.New(kafkaConf)
		if err != nil {
			return nil, errors.Wrap(err, "can't create Kafka sink")
		}
		cursor := topicMessages.Subscribe()
		go func() {
			if err := sink.Run(ctx, cursor); err != nil {
				logger.ErrorContext(ctx, "Kafka sink stopped", slogx.Error(err))
			}
		}()
		cleanupFuncs = append(cleanupFuncs, func(context.Context) error {
			sink.Close()
			return nil
		})
	}

	publishers := []publisher.BatchPublisher{topicMessages, contractLogs}
	if reportingClient, err := do.Invoke[*reportingclient.ReportingClient](injector); err == nil && reportingClient != nil {
		if err := reportingClient.SubmitNodeReport(ctx, common.ModuleImporter.String(), conf.Network); err != nil {
			logger.WarnContext(ctx, "Failed to submit node report", slogx.Error(err))
		}
		publishers = append(publishers, publisher.NewReportingPublisher(reportingClient, conf.Network, Version))
	}

	var registry *prometheus.Registry
	opts := []batch.Option{
		batch.WithPublishers(publishers...),
		batch.WithCleanupFuncs(cleanupFuncs...),
	}
	if importerConf.Metrics.Enabled {
		registry = do.MustInvoke[*prometheus.Registry](injector)
		opts = append(opts, batch.WithMetrics(batch.NewMetrics(registry)))
	}

	resolver := entityid.NewResolver(importerConf.Shard, importerConf.Realm, importerConf.PartialDataPolicy, nil)
	coordinator := batch.New(&importerConf, importerDg, processor.New(&importerConf, nil), resolver, opts...)

	// Mount API
	if httpServer, err := do.Invoke[*fiber.App](injector); err == nil {
		var gatherer prometheus.Gatherer
		if registry != nil {
			gatherer = registry
		}
		if err := importerapi.NewHTTPHandler(conf.Network, coordinator, gatherer).Mount(httpServer); err != nil {
			return nil, errors.Wrap(err, "can't mount importer API")
		}
		logger.InfoContext(ctx, "Mounted HTTP handler")
	}

	worker := indexer.New[*types.RecordFile](coordinator, recordFileDatasource)
	worker.PollingInterval = importerConf.PollingInterval
	return worker, nil
}

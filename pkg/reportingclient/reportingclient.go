package reportingclient

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/pkg/httpclient"
	"github.com/gaze-network/ledger-importer/pkg/logger"
)

type Config struct {
	Disabled       bool   `mapstructure:"disabled"`
	BaseURL        string `mapstructure:"base_url"`
	Name           string `mapstructure:"name"`
	WebsiteURL     string `mapstructure:"website_url"`
	ImporterAPIURL string `mapstructure:"importer_api_url"`
}

// ReportingClient reports the importer's progress to a monitoring service.
type ReportingClient struct {
	httpClient *httpclient.Client
	config     Config
}

const defaultBaseURL = "http://localhost:8081"

func New(config Config) (*ReportingClient, error) {
	if config.Name == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "reporting.name config is required if reporting is enabled")
	}
	baseURL := utils.Default(config.BaseURL, defaultBaseURL)
	httpClient, err := httpclient.New(baseURL)
	if err != nil {
		return nil, errors.Wrap(errs.InvalidArgument, err.Error())
	}
	return &ReportingClient{
		httpClient: httpClient,
		config:     config,
	}, nil
}

type SubmitRecordFileReportPayload struct {
	Type          string         `json:"type"`
	ClientVersion string         `json:"clientVersion"`
	Network       common.Network `json:"network"`
	Name          string         `json:"name"`
	Index         int64          `json:"index"`
	Hash          string         `json:"hash"`
	PreviousHash  string         `json:"previousHash"`
	ConsensusEnd  int64          `json:"consensusEnd"`
	Count         int64          `json:"count"`
}

func (r *ReportingClient) SubmitRecordFileReport(ctx context.Context, payload SubmitRecordFileReportPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "can't marshal payload")
	}
	resp, err := r.httpClient.Post(ctx, "/v1/report/record-file", httpclient.RequestOptions{
		Body: body,
	})
	if err != nil {
		return errors.Wrap(err, "can't send request")
	}
	if resp.StatusCode() >= 400 {
		logger.WarnContext(ctx, "failed to submit record file report", slog.Any("payload", payload), slog.String("responseBody", string(resp.Body())))
		return nil
	}
	logger.DebugContext(ctx, "record file report submitted", slog.Any("payload", payload))
	return nil
}

type SubmitNodeReportPayload struct {
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	Network        common.Network `json:"network"`
	WebsiteURL     string         `json:"websiteURL,omitempty"`
	ImporterAPIURL string         `json:"importerAPIURL,omitempty"`
}

func (r *ReportingClient) SubmitNodeReport(ctx context.Context, module string, network common.Network) error {
	payload := SubmitNodeReportPayload{
		Name:           r.config.Name,
		Type:           module,
		Network:        network,
		WebsiteURL:     r.config.WebsiteURL,
		ImporterAPIURL: r.config.ImporterAPIURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "can't marshal payload")
	}
	resp, err := r.httpClient.Post(ctx, "/v1/report/node", httpclient.RequestOptions{
		Body: body,
	})
	if err != nil {
		return errors.Wrap(err, "can't send request")
	}
	if resp.StatusCode() >= 400 {
		logger.WarnContext(ctx, "failed to submit node report", slog.Any("payload", payload), slog.String("responseBody", string(resp.Body())))
		return nil
	}
	logger.InfoContext(ctx, "node report submitted", slog.Any("payload", payload))
	return nil
}

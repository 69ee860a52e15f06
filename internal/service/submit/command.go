package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/robolab/packlab/internal/archive"
	"github.com/robolab/packlab/internal/config"
	"github.com/robolab/packlab/internal/logger"
	"github.com/robolab/packlab/internal/version"
	"github.com/robolab/packlab/internal/workspace"
)

const (
	// maxUploadSize caps submission archives at 20 MiB.
	maxUploadSize int64 = 20 * 1024 * 1024

	// submitPath is the API endpoint receiving submission archives.
	submitPath = "jobs/submit_tar"

	// jobsPagePath is the web page listing the user's jobs.
	jobsPagePath = "jobs"

	// jobLimitMessage is the API reply sent when no more jobs may be queued.
	jobLimitMessage = "User reached max allowed limit of running jobs"

	// statusError marks a rejected submission in the API reply.
	statusError = "error"
)

var (
	errProjectNameRequired = errors.New("project name is required")
	errSubmissionLimit     = errors.New("no more jobs can be submitted right now")
	errSubmissionRejected  = errors.New("submission rejected")
	errReplyNotJSON        = errors.New("server reply is not valid JSON")
)

// Options contains inputs for the submit entry point.
type Options struct {
	// ConfigPath is an optional path to the API access file.
	ConfigPath string
	// Project is the workspace project to submit.
	Project string
}

// jobReply is the JSON document the submission endpoint answers with.
type jobReply struct {
	// Status is "success" or "error".
	Status string `json:"status"`
	// Error carries the reason when Status is "error".
	Error string `json:"error"`
	// JobID identifies the queued job on success.
	JobID string `json:"job_id"`
}

// submitter packs one workspace project and uploads it to the lab API.
// It is unexported—callers should use Run, which encapsulates lookup and validation.
type submitter struct {
	// cfg is the API access configuration.
	cfg *config.Config
	// project is the resolved workspace package to submit.
	project *workspace.Package
}

// Run executes the submission workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "packlab-submit")

	s, err := newSubmitter(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize submission: %w", err)
	}

	if err = s.Run(ctx); err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}

	logger.Info(ctx, "Submission completed successfully")

	return nil
}

// newSubmitter resolves the workspace, the API configuration and the project.
func newSubmitter(ctx context.Context, opts *Options) (*submitter, error) {
	projectName := strings.TrimSpace(opts.Project)
	if projectName == "" {
		return nil, errProjectNameRequired
	}

	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}

	root, err := workspace.FindRoot(workingDir)
	if err != nil {
		return nil, fmt.Errorf("run this command inside your workspace: %w", err)
	}

	configPath, err := config.Locate(opts.ConfigPath, workingDir, root)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			logger.Errorf(ctx, "No API access file found, ask your lab supervisor for %s", config.DefaultConfigFilename)
		}

		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	project, err := workspace.FindPackage(root, projectName)
	if err != nil {
		if errors.Is(err, workspace.ErrPackageNotFound) {
			logger.Errorf(ctx, "Project %s is not part of the workspace at %s", projectName, root)
		}

		return nil, err
	}

	return &submitter{cfg: cfg, project: project}, nil
}

// Run packs the project, checks the size cap and uploads the archive.
func (s *submitter) Run(ctx context.Context) error {
	archivePath, err := s.createArchive(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = os.Remove(archivePath)
	}()

	if err = archive.CheckSize(archivePath, maxUploadSize); err != nil {
		if errors.Is(err, archive.ErrTooLarge) {
			logger.Errorf(ctx, "Project %s is too big for upload, add large files to %s",
				s.project.Name, archive.IgnoreFilename)
		}

		return err
	}

	reply, err := s.upload(ctx, archivePath)
	if err != nil {
		return err
	}

	return s.reportOutcome(ctx, reply)
}

// createArchive packs the project into a temporary gzipped tar.
func (s *submitter) createArchive(ctx context.Context) (string, error) {
	archiveFile, err := os.CreateTemp("", "packlab-submit-*.tar.gz")
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}

	logger.InfoKV(ctx, "Packing project", "project", s.project.Name, "dir", s.project.Dir)

	if err = archive.Pack(s.project.Dir, archiveFile); err != nil {
		_ = archiveFile.Close()
		_ = os.Remove(archiveFile.Name())

		return "", fmt.Errorf("pack %s: %w", s.project.Name, err)
	}

	if err = archiveFile.Close(); err != nil {
		_ = os.Remove(archiveFile.Name())

		return "", fmt.Errorf("close archive file: %w", err)
	}

	return archiveFile.Name(), nil
}

// upload sends the archive to the submission endpoint and decodes the reply.
func (s *submitter) upload(ctx context.Context, archivePath string) (*jobReply, error) {
	submitURL, err := s.submitURL()
	if err != nil {
		return nil, err
	}

	archiveFile, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = archiveFile.Close()
	}()

	info, err := archiveFile.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPut, submitURL, archiveFile)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	request.ContentLength = info.Size()
	request.Header.Set("Content-Type", "application/gzip")

	logger.InfoKV(ctx, "Uploading archive", "bytes", info.Size(), "url", s.cfg.APIURL)

	client := &http.Client{Timeout: s.cfg.Timeout}

	response, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("upload archive: %w", err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	return decodeReply(response.Body)
}

// submitURL composes the endpoint with the identification query parameters.
// The token rides in the query and must never be logged.
func (s *submitter) submitURL() (string, error) {
	endpoint, err := url.Parse(s.cfg.APIURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}

	endpoint.Path = path.Join(endpoint.Path, submitPath)

	query := url.Values{}
	query.Set("username", s.cfg.Username)
	query.Set("project", s.project.Name)
	query.Set("token", s.cfg.Token)
	query.Set("client_version", version.Short())

	if revision, ok := projectRevision(s.project.Dir); ok {
		query.Set("revision", revision)
	}

	endpoint.RawQuery = query.Encode()

	return endpoint.String(), nil
}

// projectRevision reports the project's git HEAD when the checkout has one.
func projectRevision(dir string) (string, bool) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}

	head, err := repo.Head()
	if err != nil {
		return "", false
	}

	return head.Hash().String(), true
}

// decodeReply parses the endpoint's JSON answer. Anything undecodable is
// fatal: it usually means the request never reached the API.
func decodeReply(body io.Reader) (*jobReply, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}

	var reply jobReply
	if err = json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("%w: %s", errReplyNotJSON, strings.TrimSpace(string(raw)))
	}

	return &reply, nil
}

// reportOutcome translates the API reply into the command result.
func (s *submitter) reportOutcome(ctx context.Context, reply *jobReply) error {
	if reply.Status == statusError {
		if strings.Contains(reply.Error, jobLimitMessage) {
			logger.Error(ctx, "You reached the limit of running jobs, wait for one to finish or cancel it")
			s.logJobsPage(ctx)

			return errSubmissionLimit
		}

		return fmt.Errorf("%w: %s", errSubmissionRejected, reply.Error)
	}

	logger.InfoKV(ctx, "Project submitted", "project", s.project.Name, "job_id", reply.JobID)
	s.logJobsPage(ctx)

	return nil
}

// logJobsPage points the user at the web page tracking their jobs.
func (s *submitter) logJobsPage(ctx context.Context) {
	if s.cfg.WebURL == "" {
		return
	}

	logger.Infof(ctx, "Track your jobs at %s/%s", strings.TrimSuffix(s.cfg.WebURL, "/"), jobsPagePath)
}

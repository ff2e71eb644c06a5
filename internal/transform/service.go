package transform

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"ultramdmemo/internal/history"
	"ultramdmemo/internal/runner"
)

// HistoryWriter is the part of history.Store the pipeline needs.
type HistoryWriter interface {
	Paths(id string) history.Paths
	Save(ctx context.Context, id string, input string, output string, meta history.Meta) error
}

type Result struct {
	Markdown string       `json:"markdown"`
	Meta     history.Meta `json:"meta"`
}

type ServiceConfig struct {
	Host    runner.ProcessHost
	History HistoryWriter
	Logger  *zap.SugaredLogger
}

type Service struct {
	host    runner.ProcessHost
	history HistoryWriter
	logger  *zap.SugaredLogger

	now    func() time.Time
	suffix func() uint32
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		host:    cfg.Host,
		history: cfg.History,
		logger:  logger,
		now:     time.Now,
		suffix:  randomSuffix,
	}
}

// Transform validates req, runs the CLI once and persists the record. No
// process is started for an invalid request, and nothing is persisted
// unless the CLI succeeded.
func (s *Service) Transform(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		s.logger.Infow("transform_rejected", "err", err)
		return nil, err
	}

	intent, mode := req.intent(), req.mode()
	inputChars := utf8.RuneCountInString(req.Text)
	prompt := BuildPrompt(req)

	s.logger.Infow(
		"transform_started",
		"intent", intent,
		"mode", mode,
		"include_raw", req.IncludeRaw,
		"input_chars", inputChars,
	)

	start := time.Now()
	markdown, err := s.host.Execute(ctx, prompt, req.Text)
	duration := time.Since(start)
	if err != nil {
		s.logger.Warnw("transform_failed", "err", err, "duration_ms", duration.Milliseconds())
		return nil, err
	}

	warnings := checkSections(markdown)
	now := s.now()
	id := newID(now, s.suffix())

	meta := history.Meta{
		ID:         id,
		CreatedAt:  now.Round(0).UTC(),
		Title:      ExtractTitle(markdown, now),
		Intent:     string(intent),
		Mode:       string(mode),
		IncludeRaw: req.IncludeRaw,
		TitleHint:  req.TitleHint,
		InputChars: inputChars,
		DurationMs: duration.Milliseconds(),
		Warnings:   warnings,
		Paths:      s.history.Paths(id),
	}

	if err := s.history.Save(ctx, id, req.Text, markdown, meta); err != nil {
		s.logger.Errorw("history_save_failed", "id", id, "err", err)
		return nil, err
	}

	s.logger.Infow(
		"transform_finished",
		"id", id,
		"title", meta.Title,
		"warnings", len(warnings),
		"duration_ms", meta.DurationMs,
	)
	return &Result{Markdown: markdown, Meta: meta}, nil
}

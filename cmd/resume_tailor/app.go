package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/compilation"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/experience"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/optimization"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/types"
)

// app holds the wired collaborators for commands that run the pipeline.
type app struct {
	pipeline  *pipeline.Pipeline
	artifacts *compilation.ArtifactStore
	runs      db.RunStore
	llm       llm.Client
}

func (a *app) Close() {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.runs != nil {
		_ = a.runs.Close()
	}
}

// appOptions overrides parts of the configuration-driven wiring.
type appOptions struct {
	artifactsDir string
	withHistory  bool
}

func newController(cfg *config.Config, logger *zap.Logger) *ingestion.Controller {
	engines := ingestion.DefaultEngines(ingestion.EngineOptions{
		UseBrowser:       cfg.Extraction.UseBrowser,
		UserAgent:        cfg.Extraction.UserAgent,
		Timeout:          cfg.Extraction.Timeout,
		DescriptionLimit: cfg.Extraction.DescriptionLimit,
	})
	return ingestion.NewController(logger, cfg.Extraction.Timeout, engines...)
}

func newCompiler(cfg *config.Config, logger *zap.Logger) *compilation.Compiler {
	return compilation.New(compilation.Options{
		Binary:        cfg.Compile.Binary,
		Timeout:       cfg.Compile.Timeout,
		Passes:        cfg.Compile.Passes,
		WorkRoot:      cfg.Compile.WorkRoot,
		MaxConcurrent: cfg.Compile.MaxConcurrent,
	}, logger)
}

func loadRenderer(cfg *config.Config) (*types.ResumeProfile, *rendering.Renderer, error) {
	profile, err := experience.LoadProfile(cfg.Profile.Path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load resume profile")
	}
	renderer, err := rendering.NewRenderer(profile)
	if err != nil {
		return nil, nil, err
	}
	return profile, renderer, nil
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts appOptions) (*app, error) {
	profile, renderer, err := loadRenderer(cfg)
	if err != nil {
		return nil, err
	}

	dir := cfg.Artifacts.Dir
	if opts.artifactsDir != "" {
		dir = opts.artifactsDir
	}
	artifacts, err := compilation.NewArtifactStore(dir)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(ctx, &llm.Config{
		Provider:    llm.ProviderGemini,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, cfg.LLM.APIKey)
	if err != nil {
		return nil, err
	}

	a := &app{artifacts: artifacts, llm: client}
	if opts.withHistory && cfg.Database.URL != "" {
		runs, err := db.Open(ctx, cfg.Database.URL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.runs = runs
	}

	a.pipeline = pipeline.New(pipeline.Deps{
		Extractor: newController(cfg, logger),
		Optimizer: optimization.New(client, profile, logger),
		Renderer:  renderer,
		Compiler:  newCompiler(cfg, logger),
		Artifacts: artifacts,
		Runs:      a.runs,
	}, logger)
	return a, nil
}

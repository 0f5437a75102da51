package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-pipeline/internal/config"
	"github.com/jonathan/hiring-pipeline/internal/ingestion"
	"github.com/jonathan/hiring-pipeline/internal/logging"
	"github.com/jonathan/hiring-pipeline/internal/observability"
	"github.com/jonathan/hiring-pipeline/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume file against a job description",
	Long:  "Extract the text of a PDF, DOCX or HTML resume and print the ATS score the API would store for it.",
	RunE:  runScore,
}

var (
	scoreResumeFile   string
	scoreCoverFile    string
	scoreTitle        string
	scoreDescription  string
	scoreRequirements []string
	scoreSkills       []string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreResumeFile, "resume", "r", "", "Path to the resume file (required)")
	scoreCmd.Flags().StringVar(&scoreCoverFile, "cover-letter", "", "Path to a plain text cover letter")
	scoreCmd.Flags().StringVarP(&scoreTitle, "title", "t", "", "Job title (required)")
	scoreCmd.Flags().StringVarP(&scoreDescription, "description", "d", "", "Job description")
	scoreCmd.Flags().StringSliceVar(&scoreRequirements, "requirement", nil, "Job requirement (repeatable)")
	scoreCmd.Flags().StringSliceVar(&scoreSkills, "skill", nil, "Required skill (repeatable)")

	_ = scoreCmd.MarkFlagRequired("resume")
	_ = scoreCmd.MarkFlagRequired("title")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	data, err := os.ReadFile(scoreResumeFile)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	mimeType := ingestion.DetectMimeType(filepath.Base(scoreResumeFile), "")
	if !ingestion.IsSupported(mimeType) {
		return fmt.Errorf("unsupported resume type %q", mimeType)
	}
	resumeText, err := ingestion.ExtractText(data, mimeType)
	if err != nil {
		return fmt.Errorf("failed to extract resume text: %w", err)
	}

	var coverLetter string
	if scoreCoverFile != "" {
		raw, err := os.ReadFile(scoreCoverFile)
		if err != nil {
			return fmt.Errorf("failed to read cover letter: %w", err)
		}
		coverLetter = string(raw)
	}

	ctx := cmd.Context()
	scorer, closeScorer, err := openScorer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeScorer()

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintJobRequirements(scoreTitle, scoreRequirements, scoreSkills)

	result := scorer.Score(ctx, scoring.Requirements{
		Title:        scoreTitle,
		Description:  scoreDescription,
		Requirements: scoreRequirements,
		Skills:       scoreSkills,
	}, resumeText, coverLetter)
	printer.PrintScore(result.Score, result.Reasoning, result.MissingKeywords)
	return nil
}

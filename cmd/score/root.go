package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/config"
	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/models"
	"alfredoptarigan/candidate-scorer/internal/services"
)

var rootCmd = &cobra.Command{
	Use:          "score",
	Short:        "Score a resume against a job description and print the result as JSON",
	Example:      "  score --resume cv.pdf --job job.txt --github https://github.com/jane",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScore(cmd)
	},
}

func init() {
	rootCmd.Flags().StringP("resume", "r", "", "resume file (pdf, docx or txt)")
	rootCmd.Flags().StringP("job", "j", "", "file holding the job description")
	rootCmd.Flags().String("github", "", "GitHub profile URL, overrides the one found in the resume")
	rootCmd.Flags().String("linkedin", "", "LinkedIn profile URL, overrides the one found in the resume")
	rootCmd.Flags().String("portfolio", "", "portfolio URL, overrides the one found in the resume")
	rootCmd.Flags().Bool("no-cache", false, "always call the model, still recording answers")
	rootCmd.Flags().Bool("no-persist", false, "keep the generation cache in memory only")
	rootCmd.Flags().Bool("debug", false, "enable debug logging")
	rootCmd.Flags().Bool("json-log", false, "log in JSON instead of console format")

	rootCmd.MarkFlagRequired("resume")
	rootCmd.MarkFlagRequired("job")
}

func runScore(cmd *cobra.Command) error {
	flags := cmd.Flags()
	resumePath, _ := flags.GetString("resume")
	jobPath, _ := flags.GetString("job")
	noCache, _ := flags.GetBool("no-cache")
	noPersist, _ := flags.GetBool("no-persist")
	debug, _ := flags.GetBool("debug")
	jsonLog, _ := flags.GetBool("json-log")

	log, err := logger.New(jsonLog, debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	cfg := config.Load()
	if noPersist {
		cfg.Cache.Backend = "memory"
	}

	req, err := buildRequest(resumePath, jobPath, !noCache)
	if err != nil {
		return err
	}
	req.Manual = models.ProfileURLs{
		GitHub:    flagURL(cmd, "github"),
		LinkedIn:  flagURL(cmd, "linkedin"),
		Portfolio: flagURL(cmd, "portfolio"),
	}

	ctx := context.Background()
	gemini, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		EmbedModel:  cfg.Gemini.EmbedModel,
		MaxAttempts: cfg.Gemini.MaxAttempts,
	}, log)
	if err != nil {
		return err
	}

	store, err := services.NewCacheStore(cfg.Cache)
	if err != nil {
		return err
	}

	pipeline := services.NewPipeline(gemini, store, cfg.Gemini.Temperature, cfg.Verification, log)
	result, err := pipeline.Score(ctx, req)
	if err != nil {
		if errors.Is(err, services.ErrFatalInput) {
			log.Error("resume could not be scored", zap.Error(err))
		}
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func buildRequest(resumePath, jobPath string, useCache bool) (models.ScoreRequest, error) {
	var req models.ScoreRequest

	docType, err := models.ParseDocumentType(resumePath)
	if err != nil {
		return req, err
	}

	content, err := os.ReadFile(resumePath)
	if err != nil {
		return req, fmt.Errorf("failed to read resume: %w", err)
	}

	job, err := os.ReadFile(jobPath)
	if err != nil {
		return req, fmt.Errorf("failed to read job description: %w", err)
	}

	req.Document = models.RawDocument{
		Filename: filepath.Base(resumePath),
		Type:     docType,
		Content:  content,
	}
	req.JobDescription = string(job)
	req.UseCache = useCache
	return req, nil
}

func flagURL(cmd *cobra.Command, name string) *string {
	v, _ := cmd.Flags().GetString(name)
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

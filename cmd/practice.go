package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/dataready/internal/app"
	"github.com/abhisek/dataready/internal/catalog"
	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/report"
)

type practiceFlags struct {
	role         string
	cloud        string
	mode         string
	years        int
	maxQuestions int
	noLLM        bool
}

var practiceOpts practiceFlags

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a mock interview in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPractice(cmd, practiceOpts)
	},
}

func init() {
	f := practiceCmd.Flags()
	f.StringVar(&practiceOpts.role, "role", "", "Target role, e.g. mid_data_engineer")
	f.StringVar(&practiceOpts.cloud, "cloud", "", "Cloud preference: aws, gcp, azure, multi_cloud, cloud_agnostic")
	f.StringVar(&practiceOpts.mode, "mode", "", "Interview mode: structured, structured_followup, stress")
	f.IntVar(&practiceOpts.years, "years", 0, "Years of experience")
	f.IntVar(&practiceOpts.maxQuestions, "max-questions", 0, "Core questions to ask (5-15)")
	f.BoolVar(&practiceOpts.noLLM, "no-llm", false, "Use the built-in question bank and heuristic scoring")
}

// presetSetup turns flags into setup preselections.
func (p practiceFlags) presetSetup() (interview.Setup, error) {
	s := interview.Setup{
		CloudPreference:   catalog.CloudPreference(p.cloud),
		Mode:              interview.Mode(p.mode),
		YearsOfExperience: p.years,
		MaxQuestions:      p.maxQuestions,
	}
	if p.role != "" {
		role, err := catalog.ParseRole(p.role)
		if err != nil {
			return s, err
		}
		s.TargetRole = role
	}
	if s.CloudPreference != "" && !s.CloudPreference.Valid() {
		return s, fmt.Errorf("unknown cloud %q", p.cloud)
	}
	return s, nil
}

func runPractice(cmd *cobra.Command, p practiceFlags) error {
	preset, err := p.presetSetup()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	rt, err := newRuntime(ctx, cfg, runtimeOptions{quiet: true, noLLM: p.noLLM})
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	res, err := app.Run(app.Options{Interviews: rt.orchestrator, Setup: preset})
	if err != nil {
		return err
	}
	if res.Err != nil {
		return fmt.Errorf("interview %s: %w", res.SessionID, res.Err)
	}
	if res.Report != nil {
		fmt.Fprintln(cmd.OutOrStdout(), report.Render(res.Report))
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s saved.\n", res.SessionID)
	}
	return nil
}

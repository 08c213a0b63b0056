package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/dataready/internal/report"
	"github.com/abhisek/dataready/internal/simulate"
)

var (
	simulateOpts    practiceFlags
	simulateAnswers string
	simulateAuto    bool
	simulateJSON    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted interview end to end and print the report",
	Example: `  dataready simulate --answers answers.yaml
  dataready simulate --auto --role senior_data_engineer --years 7 --no-llm`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (simulateAnswers == "") == !simulateAuto {
			return errors.New("exactly one of --answers or --auto is required")
		}

		setup, err := simulateOpts.presetSetup()
		if err != nil {
			return err
		}
		var answerer simulate.Answerer = simulate.Auto{}
		if simulateAnswers != "" {
			script, err := simulate.LoadScript(simulateAnswers)
			if err != nil {
				return err
			}
			setup = script.Setup.Setup()
			answerer = simulate.NewScripted(script.Answers)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		rt, err := newRuntime(ctx, cfg, runtimeOptions{noLLM: simulateOpts.noLLM})
		if err != nil {
			return err
		}
		defer rt.Close(context.Background())

		res, err := simulate.Run(ctx, rt.orchestrator, setup, answerer, rt.log)
		if err != nil {
			return fmt.Errorf("simulate: %w", err)
		}

		out := cmd.OutOrStdout()
		if simulateJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		for _, t := range res.Turns {
			label := fmt.Sprintf("Q%d", t.Number)
			if t.IsFollowup {
				label += " follow-up"
			}
			fmt.Fprintf(out, "%s: %s\n  > %s\n\n", label, t.Question, t.Answer)
		}
		if res.EndReason != "" {
			fmt.Fprintf(out, "Ended early: %s\n\n", res.EndReason)
		}
		fmt.Fprintln(out, report.Render(res.Report))
		return nil
	},
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simulateAnswers, "answers", "", "YAML script with setup and answers")
	f.BoolVar(&simulateAuto, "auto", false, "Answer every question with a canned response")
	f.BoolVar(&simulateJSON, "json", false, "Print the transcript and report as JSON")
	f.StringVar(&simulateOpts.role, "role", "junior_data_engineer", "Target role (with --auto)")
	f.StringVar(&simulateOpts.cloud, "cloud", "", "Cloud preference (with --auto)")
	f.StringVar(&simulateOpts.mode, "mode", "", "Interview mode (with --auto)")
	f.IntVar(&simulateOpts.years, "years", 2, "Years of experience (with --auto)")
	f.IntVar(&simulateOpts.maxQuestions, "max-questions", 0, "Core questions to ask (with --auto)")
	f.BoolVar(&simulateOpts.noLLM, "no-llm", false, "Use the built-in question bank and heuristic scoring")
}

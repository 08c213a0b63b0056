package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/report"
	"github.com/abhisek/dataready/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect stored interview sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		state, _ := cmd.Flags().GetString("state")
		if state != "" && !interview.State(state).Valid() {
			return fmt.Errorf("unknown state %q", state)
		}

		return withStore(cmd, func(st *store.Store) error {
			list, err := st.Sessions().List(cmd.Context(), store.ListOpts{Limit: limit, State: interview.State(state)})
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tROLE\tMODE\tSTATE\tQUESTIONS\tSCORE")
			for _, s := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.1f\n",
					s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.TargetRole, s.Mode,
					s.State, s.QuestionsAsked, s.RunningScore)
			}
			return w.Flush()
		})
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session's transcript, transitions and report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		return withStore(cmd, func(st *store.Store) error {
			ctx := cmd.Context()
			s, err := st.Sessions().Get(ctx, args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("session %s not found", args[0])
			}
			if err != nil {
				return err
			}
			transitions, err := st.EventRepo().Transitions(ctx, s.ID)
			if err != nil {
				return fmt.Errorf("query transitions: %w", err)
			}

			printSession(out, s, transitions)

			if len(s.Report) > 0 {
				var rep report.Report
				if err := json.Unmarshal(s.Report, &rep); err != nil {
					return fmt.Errorf("decode stored report: %w", err)
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, report.Render(&rep))
			}
			return nil
		})
	},
}

func printSession(out io.Writer, s *interview.Session, transitions []store.TransitionEvent) {
	fmt.Fprintf(out, "Session:    %s\n", s.ID)
	fmt.Fprintf(out, "Role:       %s (%d years)\n", s.Setup.TargetRole.DisplayName(), s.Setup.YearsOfExperience)
	fmt.Fprintf(out, "Mode:       %s, %s\n", s.Setup.Mode, s.Setup.CloudPreference.DisplayName())
	fmt.Fprintf(out, "State:      %s\n", s.State)
	fmt.Fprintf(out, "Questions:  %d core, %d follow-ups\n", s.TotalCoreQuestions, s.TotalFollowups)
	fmt.Fprintf(out, "Score:      %.1f\n", s.RunningScore)
	if s.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:      %s\n", s.ErrorMessage)
	}

	if len(transitions) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tFROM\tTO")
		for _, t := range transitions {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.Timestamp.Local().Format("15:04:05"), t.From, t.To)
		}
		w.Flush()
	}

	for i := range s.Questions {
		q := &s.Questions[i]
		label := fmt.Sprintf("Q%d", i+1)
		if q.IsFollowup {
			label += " (follow-up)"
		}
		fmt.Fprintf(out, "\n%s [%s, difficulty %d]\n  %s\n", label, q.SkillID, q.Difficulty, q.QuestionText)
		if q.Answered() {
			fmt.Fprintf(out, "  > %s\n", q.ResponseTranscript)
		}
		if q.Evaluation != nil {
			fmt.Fprintf(out, "  score %.1f\n", q.Evaluation.Scores.Overall())
		}
	}
}

func init() {
	sessionsListCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	sessionsListCmd.Flags().String("state", "", "Only sessions in this state")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
}

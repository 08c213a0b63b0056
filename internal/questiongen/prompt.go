package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/dataready/internal/catalog"
	"github.com/abhisek/dataready/internal/interview"
)

// SystemPrompt is the interviewer persona shared by the question and
// follow-up collaborators.
const SystemPrompt = `You are an experienced data engineering interviewer at a top tech company.

Rules:
- Conduct a professional technical interview and ask one question at a time.
- Ask relevant, role-appropriate questions. Prefer scenario-based questions over definitions.
- Use "How would you..." and "Describe a time when..." formats.
- Never reveal answers or correct the candidate.
- Keep questions focused, clear and concise, like a real interviewer.
- Avoid trivia or obscure tool-specific questions.`

// buildUserMessage constructs the question generation request.
func buildUserMessage(ictx interview.Context, cfg Config) string {
	s := ictx.Session
	role := s.Setup.TargetRole
	cloud := s.Setup.CloudPreference

	var b strings.Builder
	b.WriteString(ictx.PromptSummary())
	fmt.Fprintf(&b, "- Experience Range: %s\n", role.Info().ExperienceRange)
	if perf := recentPerformance(ictx.RecentResponses); perf != "" {
		b.WriteString(perf)
		b.WriteString("\n")
	}

	if cloud.IsProvider() {
		fmt.Fprintf(&b, "\nCloud emphasis: the candidate prefers %s. Frame at least a third of the questions around %s services when asking about pipelines, storage or processing.\n",
			cloud.DisplayName(), cloud)
	}

	fmt.Fprintf(&b, "\nRole focus areas: %s\n", strings.Join(catalog.FocusAreas(role), ", "))

	b.WriteString("\nQuestions already asked (do not repeat or rephrase):\n")
	b.WriteString(buildDedup(s.Questions, cfg.MaxPriorQuestions))

	fmt.Fprintf(&b, "\n\nGenerate the next question. Target a skill from the remaining list, match difficulty %d/10, stay appropriate for a %s, and pick a topic no previous question covered.",
		s.Difficulty, role.DisplayName())
	return b.String()
}

// recentPerformance summarises the latest scored answers.
func recentPerformance(recent []interview.QuestionResponse) string {
	var sum float64
	var n int
	for _, q := range recent {
		if q.Evaluation != nil {
			sum += q.Evaluation.OverallScore()
			n++
		}
	}
	if n == 0 {
		return ""
	}
	switch avg := sum / float64(n); {
	case avg >= 7.5:
		return "- Candidate is performing well; consider increasing difficulty."
	case avg <= 4.5:
		return "- Candidate is struggling; consider adjusting difficulty down."
	default:
		return "- Candidate is performing adequately."
	}
}

// buildDedup lists asked questions, keeping only the most recent max.
func buildDedup(asked []interview.QuestionResponse, max int) string {
	if len(asked) == 0 {
		return "None yet"
	}
	start := 0
	if max > 0 && len(asked) > max {
		start = len(asked) - max
	}

	var b strings.Builder
	for i := start; i < len(asked); i++ {
		prefix := "[Core]"
		if asked[i].IsFollowup {
			prefix = "[Follow-up]"
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, prefix, asked[i].QuestionText)
	}
	return strings.TrimRight(b.String(), "\n")
}

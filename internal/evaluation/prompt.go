package evaluation

import (
	"fmt"
	"strings"

	"github.com/abhisek/dataready/internal/interview"
)

const systemPrompt = `You are an expert technical interviewer evaluating a data engineering candidate's response.

Score the response objectively against the rubric, identify what the candidate did well, note what was missing or incorrect, look for red flags such as misconceptions or overconfidence, identify signals of seniority level and suggest whether a follow-up question would help. Be fair but thorough.

Scoring rubric (0-10 per dimension):
- technical_correctness: 9-10 completely accurate with edge cases; 5-6 partially correct; 1-2 mostly incorrect.
- depth_of_understanding: 9-10 expert insight into why; 7-8 can discuss trade-offs; 3-4 memorized without understanding.
- practical_experience: 9-10 clear hands-on production experience; 5-6 some exposure; 1-2 none.
- communication_clarity: 9-10 exceptionally clear and structured; 5-6 understandable; 1-2 rambling.
- confidence: 9-10 confident and admits uncertainty when warranted; 3-4 very hesitant or overconfident without substance.

difficulty_delta is -2 to +2 and suggests how the next question's difficulty should move.`

func buildUserMessage(q *interview.QuestionResponse, transcript string, ictx interview.Context) string {
	s := ictx.Session
	role := s.Setup.TargetRole

	var b strings.Builder
	fmt.Fprintf(&b, "Role: %s (%s)\n", role.DisplayName(), role.Info().ExperienceRange)
	fmt.Fprintf(&b, "Candidate experience: %d years\n", s.Setup.YearsOfExperience)
	fmt.Fprintf(&b, "Question difficulty: %d/10\n", q.Difficulty)
	if q.SkillID != "" {
		fmt.Fprintf(&b, "Skill: %s\n", q.SkillID)
	}

	fmt.Fprintf(&b, "\nQuestion asked:\n%s\n", q.QuestionText)

	b.WriteString("\nExpected points in a good answer:\n")
	b.WriteString(bullets(q.ExpectedPoints, "No specific points defined"))

	b.WriteString("\nRed flags to watch for:\n")
	b.WriteString(bullets(q.RedFlags, "None specified"))

	if conv := s.ConversationTranscript(); conv != "" {
		fmt.Fprintf(&b, "\nConversation so far on this question:\n%s\n", conv)
	}

	fmt.Fprintf(&b, "\nCandidate's response:\n%q\n", transcript)
	return b.String()
}

func bullets(items []string, empty string) string {
	if len(items) == 0 {
		return empty + "\n"
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "- %s\n", it)
	}
	return b.String()
}

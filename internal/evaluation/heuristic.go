package evaluation

import (
	"context"
	"strings"

	"github.com/abhisek/dataready/internal/interview"
)

var (
	technicalKeywords = map[string]bool{
		"architecture": true, "system": true, "design": true, "pipeline": true, "data": true,
		"performance": true, "scalability": true, "distributed": true, "consistency": true,
		"availability": true, "latency": true, "throughput": true, "batch": true, "streaming": true,
		"partition": true, "replication": true, "fault-tolerant": true, "redundancy": true,
		"optimization": true, "index": true, "query": true, "transformation": true, "etl": true,
		"spark": true, "kafka": true, "airflow": true, "sql": true, "python": true, "cloud": true,
	}

	experiencePhrases = []string{
		"experience", "worked", "implemented", "built", "designed",
		"led", "managed", "optimized", "improved", "solved",
		"production", "deployed", "migrated", "scaled",
	}

	structurePhrases = []string{
		"first", "second", "third", "finally", "additionally",
		"however", "therefore", "because", "in my experience",
		"for example", "specifically", "in conclusion",
	}

	hedgePhrases = []string{"maybe", "perhaps", "might", "possibly", "i think", "i guess"}
)

// wordsPerSecond approximates a 150 wpm speaking pace.
const wordsPerSecond = 2.5

// Analysis holds the text signals the heuristic scores from.
type Analysis struct {
	WordCount      int
	SentenceCount  int
	TechnicalCount int
	ExperienceHits int
	StructureHits  int
	HedgeHits      int
}

// Analyze extracts scoring signals from a transcript. Technical terms are
// matched per whitespace-separated word; the phrase lists are matched as
// substrings of the lowercased text.
func Analyze(transcript string) Analysis {
	words := strings.Fields(transcript)
	lower := strings.ToLower(transcript)

	a := Analysis{
		WordCount:      len(words),
		SentenceCount:  strings.Count(transcript, ".") + strings.Count(transcript, "?") + strings.Count(transcript, "!"),
		ExperienceHits: countPhrases(lower, experiencePhrases),
		StructureHits:  countPhrases(lower, structurePhrases),
		HedgeHits:      countPhrases(lower, hedgePhrases),
	}
	for _, w := range words {
		if technicalKeywords[strings.ToLower(w)] {
			a.TechnicalCount++
		}
	}
	return a
}

func countPhrases(lower string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			n++
		}
	}
	return n
}

// LengthScore bands the answer length; 200-299 words scores highest.
func (a Analysis) LengthScore() float64 {
	switch n := a.WordCount; {
	case n < 30:
		return 3.0
	case n < 50:
		return 4.0
	case n < 100:
		return 5.0
	case n < 200:
		return 6.5
	case n < 300:
		return 7.0
	case n < 500:
		return 6.5
	default:
		return 5.5
	}
}

// Scores derives the five sub-scores.
func (a Analysis) Scores() interview.Scores {
	ratio := float64(a.TechnicalCount) / float64(max(a.WordCount, 1)) * 100
	var technical float64
	if ratio > 5 {
		technical = min(9.0, 6.0+ratio/2)
	} else {
		technical = max(3.0, 5.0+ratio)
	}
	length := a.LengthScore()

	return interview.Scores{
		TechnicalCorrectness: technical,
		DepthOfUnderstanding: (technical + length) / 2,
		PracticalExperience:  min(8.0, 4.0+float64(a.ExperienceHits)*0.8),
		CommunicationClarity: min(8.0, 5.0+float64(a.StructureHits)*0.5+min(float64(a.SentenceCount)/3, 2)),
		Confidence:           max(4.0, 7.0-float64(a.HedgeHits)*0.5),
	}.Clamp()
}

// Feedback turns the signals into evaluator feedback.
func (a Analysis) Feedback() interview.Feedback {
	var well, missing, suggestions []string

	if a.TechnicalCount > 5 {
		well = append(well, "Good use of technical terminology")
	}
	if a.ExperienceHits > 2 {
		well = append(well, "Drew from practical experience")
	}
	if a.StructureHits > 2 {
		well = append(well, "Well-structured response")
	}
	if a.WordCount >= 100 && a.WordCount <= 300 {
		well = append(well, "Appropriate level of detail")
	}

	if a.TechnicalCount < 3 {
		missing = append(missing, "Could include more technical details")
		suggestions = append(suggestions, "Use specific technical terms and concepts")
	}
	if a.ExperienceHits < 2 {
		missing = append(missing, "Limited evidence of hands-on experience")
		suggestions = append(suggestions, "Include specific examples from your work")
	}
	if a.WordCount < 50 {
		missing = append(missing, "Response was too brief")
		suggestions = append(suggestions, "Elaborate on your points with examples")
	}
	if a.WordCount > 400 {
		missing = append(missing, "Response was too verbose")
		suggestions = append(suggestions, "Be more concise and focused")
	}
	if a.StructureHits < 2 {
		missing = append(missing, "Could be better structured")
		suggestions = append(suggestions, "Organize your answer with clear sections")
	}

	if len(well) == 0 {
		well = []string{"Response provided"}
	}
	return interview.Feedback{
		WentWell:         well,
		Missing:          orEmpty(missing),
		RedFlags:         []string{},
		SenioritySignals: []string{},
		Suggestions:      orEmpty(suggestions),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Heuristic scores answers from text signals alone. It never fails.
type Heuristic struct{}

// NewHeuristic returns the heuristic evaluator.
func NewHeuristic() *Heuristic { return &Heuristic{} }

// Evaluate implements Evaluator.
func (Heuristic) Evaluate(_ context.Context, q *interview.QuestionResponse, transcript string, ictx interview.Context) (*interview.ResponseEvaluation, error) {
	return HeuristicEvaluation(q, transcript, ictx), nil
}

// HeuristicEvaluation is the synchronous form of Heuristic.Evaluate.
func HeuristicEvaluation(q *interview.QuestionResponse, transcript string, ictx interview.Context) *interview.ResponseEvaluation {
	a := Analyze(transcript)
	scores := a.Scores()
	overall := scores.Overall()

	ev := &interview.ResponseEvaluation{
		SkillID:                 skillFor(q, ictx),
		Transcript:              transcript,
		ResponseDurationSeconds: float64(a.WordCount) / wordsPerSecond,
		Scores:                  scores,
		Feedback:                a.Feedback(),
		NeedsFollowup:           overall < 6.0,
		DifficultyDelta:         interview.DeltaForScore(overall),
		Source:                  interview.SourceHeuristic,
	}
	if q != nil {
		ev.QuestionID = q.QuestionID
	}
	if ev.NeedsFollowup {
		ev.FollowupReason = "Response could use more depth"
	}
	return ev
}

package interview

const (
	MinDifficulty = 1
	MaxDifficulty = 10

	MinDifficultyDelta = -2
	MaxDifficultyDelta = 2

	// FollowupBudgetFactor caps total follow-ups at this multiple of the
	// core question budget.
	FollowupBudgetFactor = 2
)

// ClampDifficulty bounds d to [1,10].
func ClampDifficulty(d int) int {
	return max(MinDifficulty, min(MaxDifficulty, d))
}

// ClampDelta bounds a difficulty delta to [-2,2].
func ClampDelta(d int) int {
	return max(MinDifficultyDelta, min(MaxDifficultyDelta, d))
}

// DeltaForScore maps an overall 0-10 score to a difficulty delta.
func DeltaForScore(overall float64) int {
	switch {
	case overall >= 8.5:
		return 2
	case overall >= 7:
		return 1
	case overall >= 5:
		return 0
	case overall >= 3:
		return -1
	default:
		return -2
	}
}

// AdjustDifficulty applies delta, clamps, and records the result in the
// history. It returns the new difficulty.
func (s *Session) AdjustDifficulty(delta int) int {
	s.Difficulty = ClampDifficulty(s.Difficulty + delta)
	s.DifficultyHistory = append(s.DifficultyHistory, s.Difficulty)
	return s.Difficulty
}

// RecordScore folds an evaluation score into the per-skill lists when the
// skill is a known key, then recomputes the running score as the mean of
// every recorded score. It reports whether the score was kept.
func (s *Session) RecordScore(skillID string, score float64) bool {
	list, ok := s.SkillScores[skillID]
	if ok {
		s.SkillScores[skillID] = append(list, score)
	}

	var sum float64
	var n int
	for _, scores := range s.SkillScores {
		for _, v := range scores {
			sum += v
			n++
		}
	}
	if n > 0 {
		s.RunningScore = sum / float64(n)
	}
	return ok
}

// FollowupAllowed reports whether the follow-up budget permits another
// follow-up. perQuestionCap of zero disables the per-question limit.
func (s *Session) FollowupAllowed(perQuestionCap int) bool {
	if s.TotalFollowups >= s.Setup.MaxQuestions*FollowupBudgetFactor {
		return false
	}
	if perQuestionCap > 0 && s.CurrentQuestionFollowups >= perQuestionCap {
		return false
	}
	return true
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/emotion_diary/pkg/logging"
)

const (
	TheoryMaslow     = "maslow"
	TheoryABC        = "abc"
	TheoryRegulation = "regulation"
)

const maslowInstructions = `You are well versed in psychology. Apply Maslow's hierarchy of needs: trace the emotions in the user's text back to the concrete needs that are not being met and decide which level of the hierarchy they belong to. Answer with this structure:

1. Emotions: the main emotions in the text
2. Unmet needs: which missing needs could explain those emotions, given the context
3. Hierarchy level: physiological, safety, belonging, esteem or self-actualization
4. Advice: reasonable steps that help the user meet that need

Keep it short and clear. Do not repeat yourself or speculate.`

const abcInstructions = `You are a psychologist who uses the ABC model of rational emotive behaviour therapy (REBT) to help people see the irrational beliefs behind their emotions. From the emotion or event the user describes, identify:

1. A (Activating event): the key event or situation that triggered the emotion
2. B (Belief): the user's automatic beliefs, interpretations or thoughts about it, including irrational ones
3. C (Consequence): the emotional and behavioural results of those beliefs

Present the three parts clearly and briefly. Do not judge, only give a structured analysis.`

const regulationInstructions = `You are well versed in psychology. Analyse the user's emotions using emotion regulation theory and suggest suitable ways to regulate them. Answer with this structure:

1. Emotions: the main emotions in the text
2. Regulation goal: which emotions the user wants to change
3. Strategies: strategies that fit those emotions, such as cognitive reappraisal, acceptance, suppression or release
4. Advice: concrete suggestions like reappraisal exercises, meditation or ways to release emotion
5. Follow-up: further methods or professional help if needed

Keep it short and clear. Do not repeat yourself or speculate.`

// ChatModel is the language model the theories are run against.
type ChatModel interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

type TheoryService struct {
	LLM ChatModel
}

// Instructions returns the system prompt for theory. Unknown names fall
// back to emotion regulation.
func Instructions(theory string) (name, prompt string) {
	switch strings.ToLower(strings.TrimSpace(theory)) {
	case TheoryMaslow:
		return TheoryMaslow, maslowInstructions
	case TheoryABC:
		return TheoryABC, abcInstructions
	default:
		return TheoryRegulation, regulationInstructions
	}
}

func (s *TheoryService) Analyze(ctx context.Context, theory, text string) (string, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", fmt.Errorf("%w: context is required", ErrValidation)
	}

	name, prompt := Instructions(theory)
	if s.LLM == nil {
		return name, "", fmt.Errorf("%w: language model is not configured", ErrUnavailable)
	}

	reply, err := s.LLM.Chat(ctx, prompt, text)
	if err != nil {
		logging.FromContext(ctx).Warn("theory_failed", "theory", name, "error", err)
		return name, "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return name, reply, nil
}

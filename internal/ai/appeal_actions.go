package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
)

const (
	assessSystemPrompt = "You are a senior community admin. Identify lies or genuine regret. Provide a 2-sentence verdict."

	classifySystemPrompt = "You moderate a Minecraft ban appeal queue. Answer with exactly one word: " +
		"\"spam\" if the appeal is gibberish, trolling, advertising or copy-paste filler, otherwise \"clean\"."
)

// AssessAppeal возвращает короткую оценку честности и раскаяния игрока.
func (c *Client) AssessAppeal(ctx context.Context, appeal *entity.Appeal) (string, error) {
	prompt := fmt.Sprintf(
		"Analyze this Minecraft ban appeal for honesty and remorse. Be direct.\n\nUsername: %s\nReason: %s\nExplanation: %s",
		appeal.Username, appeal.Reason, appeal.Explanation,
	)

	return c.chatCompletion(ctx, []chatMessage{
		{Role: "system", Content: assessSystemPrompt},
		{Role: "user", Content: prompt},
	})
}

// ClassifyAppeal помечает апелляцию как spam или clean.
func (c *Client) ClassifyAppeal(ctx context.Context, appeal *entity.Appeal) (valueobject.AIFlag, error) {
	prompt := fmt.Sprintf("Username: %s\nReason: %s\nExplanation: %s",
		appeal.Username, appeal.Reason, appeal.Explanation)

	answer, err := c.chatCompletionWithOptions(ctx, []chatMessage{
		{Role: "system", Content: classifySystemPrompt},
		{Role: "user", Content: prompt},
	}, 5, 0)
	if err != nil {
		return "", err
	}

	return parseFlag(answer)
}

// parseFlag берёт первое слово ответа: модели любят добавлять точку или кавычки.
func parseFlag(answer string) (valueobject.AIFlag, error) {
	fields := strings.Fields(answer)
	if len(fields) == 0 {
		return "", fmt.Errorf("ai: пустая классификация")
	}
	word := strings.Trim(fields[0], ".,!\"'`*")
	flag, ok := valueobject.NewAIFlag(word)
	if !ok {
		return "", fmt.Errorf("ai: неожиданная классификация %q", answer)
	}
	return flag, nil
}

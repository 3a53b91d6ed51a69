package http

import (
	"context"
	"strings"

	"chatquiz-service/internal/game"
)

const reportNotReadyText = "Your report will be ready once you complete the game!"

// Router maps inbound chat text onto the game engine's operations. Anything
// that is not a known command is treated as an answer attempt.
type Router struct {
	engine *game.Engine
}

func NewRouter(engine *game.Engine) *Router {
	return &Router{engine: engine}
}

func (r *Router) Dispatch(ctx context.Context, userID, name, email, text string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "play", "next":
		return r.engine.StartGame(ctx, userID, name, email)
	case "score":
		return r.engine.GetScore(ctx, userID)
	case "help":
		return r.engine.GetHelp(), nil
	case "report":
		report, err := r.engine.GetReport(ctx, userID)
		if err != nil {
			return "", err
		}
		if report == "" {
			return reportNotReadyText, nil
		}
		return report, nil
	default:
		return r.engine.SubmitAnswer(ctx, userID, text)
	}
}

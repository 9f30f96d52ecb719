package assistant

import (
	"context"

	"github.com/simplecrm/simplecrm-be/internal/shared/utils"
)

// FallbackReply is what the customer sees when every generation backend has
// failed for a call.
const FallbackReply = "I apologize, but I encountered an error processing your request. Please try again or contact support."

// Result is the classifier output. Reply is always usable; Intent is
// IntentError only when generation failed outright.
type Result struct {
	Reply    string
	Intent   Intent
	Entities Entities
}

// Generator is the reply backend contract; *llm.Chain satisfies it.
type Generator interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Classifier combines deterministic intent detection with a generated
// natural-language reply.
type Classifier struct {
	generator Generator
}

func NewClassifier(generator Generator) *Classifier {
	return &Classifier{generator: generator}
}

// Process classifies the message and produces a reply. It never returns an
// error: backend failure degrades to the fixed apology with intent "error"
// and empty entities, so the pipeline can always persist a turn.
func (c *Classifier) Process(ctx context.Context, message string, cctx CustomerContext) Result {
	reply, err := c.generator.GenerateResponse(ctx, "", BuildPrompt(message, cctx))
	if err != nil {
		utils.LogWarn("reply generation failed", map[string]interface{}{
			"contact_id": cctx.ContactID.String(), "error": err.Error(),
		})
		return Result{
			Reply:    FallbackReply,
			Intent:   IntentError,
			Entities: Entities{},
		}
	}

	return Result{
		Reply:    reply,
		Intent:   DetectIntent(message),
		Entities: ExtractEntities(message),
	}
}

package structured

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/types"
)

// Completer is the single outward call the generator makes: given a system
// instruction and a user instruction, it returns the model's raw text or
// fails with a transport-level error. Implementations own timeout policy;
// the generator adds none of its own.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// maxRetries is the corrective attempts after the initial call, so every
// Generate performs at most maxRetries+1 model calls.
const maxRetries = 1

// Generator coordinates prompt construction, model calls, response parsing,
// and schema validation into a bounded retry loop. It holds only immutable
// collaborators and is safe for concurrent use; each Generate call owns its
// own attempt state.
type Generator struct {
	completer Completer
	logger    *zap.Logger
}

// NewGenerator creates a Generator backed by the given completer.
func NewGenerator(completer Completer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		completer: completer,
		logger:    logger,
	}
}

// Generate produces a value satisfying the schema, or a typed failure.
//
// The first attempt sends the initial instruction prompt; if parsing or
// validation fails, one corrective attempt embeds the previous raw
// response and the failure reason. A failed model call is terminal and
// never retried. The returned error is always a *types.Error carrying one
// of INVALID_JSON, SCHEMA_MISMATCH, or NATIVE_ERROR.
func (g *Generator) Generate(ctx context.Context, messages []types.Message, schema *JSONSchema) (Value, error) {
	if len(messages) == 0 {
		return Value{}, noMessagesError()
	}
	systemText, userText := joinByRole(messages)

	var previousResponse, previousFailure string

	for attempt := 0; attempt <= maxRetries; attempt++ {
		// A cancelled caller must not trigger another model call.
		if err := ctx.Err(); err != nil {
			return Value{}, nativeError(err)
		}

		var systemPrompt string
		if attempt == 0 {
			systemPrompt = BuildInitialPrompt(systemText, schema)
		} else {
			systemPrompt = BuildCorrectivePrompt(previousResponse, previousFailure, schema)
		}

		raw, err := g.completer.Complete(ctx, systemPrompt, userText)
		if err != nil {
			g.logger.Warn("model call failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return Value{}, nativeError(err)
		}
		previousResponse = raw

		value, err := ParseResponse(raw)
		if err != nil {
			if attempt == maxRetries {
				return Value{}, err
			}
			previousFailure = failureMessage(err)
			g.logger.Debug("response not parseable, retrying",
				zap.Int("attempt", attempt),
				zap.String("reason", previousFailure))
			continue
		}

		if err := Validate(value, schema); err != nil {
			if attempt == maxRetries {
				return Value{}, types.NewError(types.ErrSchemaMismatch,
					fmt.Sprintf("Schema validation failed after %d attempts: %s", maxRetries+1, err.Error()))
			}
			previousFailure = err.Error()
			g.logger.Debug("response failed validation, retrying",
				zap.Int("attempt", attempt),
				zap.String("reason", previousFailure))
			continue
		}

		return value, nil
	}

	// Unreachable: the final loop iteration returns on every branch.
	return Value{}, types.NewError(types.ErrNativeError, "Generation failed after all retry attempts")
}

// GenerateText joins the messages by role and issues exactly one model
// call, returning the raw text verbatim. No parsing, no validation, no
// retry.
func (g *Generator) GenerateText(ctx context.Context, messages []types.Message) (string, error) {
	if len(messages) == 0 {
		return "", noMessagesError()
	}
	systemText, userText := joinByRole(messages)

	raw, err := g.completer.Complete(ctx, systemText, userText)
	if err != nil {
		g.logger.Warn("model call failed", zap.Error(err))
		return "", nativeError(err)
	}
	return raw, nil
}

// GenerateTextWithLanguage behaves like GenerateText with a fixed
// instruction appended to the system prompt naming the response language.
func (g *Generator) GenerateTextWithLanguage(ctx context.Context, messages []types.Message, language string) (string, error) {
	if len(messages) == 0 {
		return "", noMessagesError()
	}
	systemText, userText := joinByRole(messages)

	if systemText != "" {
		systemText += "\n\n"
	}
	systemText += fmt.Sprintf("Please respond in %s.", language)

	raw, err := g.completer.Complete(ctx, systemText, userText)
	if err != nil {
		g.logger.Warn("model call failed", zap.Error(err))
		return "", nativeError(err)
	}
	return raw, nil
}

// joinByRole partitions messages by role and joins same-role contents with
// newlines, preserving input order within each role.
func joinByRole(messages []types.Message) (systemText, userText string) {
	var system, user []string
	for _, m := range messages {
		switch m.Role {
		case types.RoleSystem:
			system = append(system, m.Content)
		case types.RoleUser:
			user = append(user, m.Content)
		}
	}
	return strings.Join(system, "\n"), strings.Join(user, "\n")
}

func nativeError(cause error) *types.Error {
	return types.NewError(types.ErrNativeError,
		fmt.Sprintf("Generation failed: %s", failureMessage(cause))).WithCause(cause)
}

func noMessagesError() *types.Error {
	return types.NewError(types.ErrNativeError, "Generation failed: no messages provided")
}

// failureMessage extracts the human-readable part of an error, dropping
// the [CODE] prefix typed errors add, so corrective prompts and wrapped
// messages stay readable.
func failureMessage(err error) string {
	if te, ok := err.(*types.Error); ok {
		return te.Message
	}
	return err.Error()
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/service/command"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/secmon-lab/bqchat/pkg/utils/msg"
)

// Chat answers one user message. The answer is delivered through msg.Notify
// and both sides of the turn are recorded in the repository.
func (x *UseCases) Chat(ctx context.Context, ssn *chat.Session, message string) error {
	rt, err := x.acquire(ctx, ssn)
	if err != nil {
		return err
	}
	defer rt.mu.Unlock()
	defer x.touch(ctx, rt)

	logger := logging.From(ctx).With("session_id", ssn.ID, "mode", ssn.Mode)
	ctx = logging.With(ctx, logger)
	logger.Debug("chat message received", "message", message)

	x.record(ctx, ssn, chat.RoleUser, message)

	var reply string
	switch ssn.Mode {
	case chat.ModeEcho:
		reply = echo(message)

	case chat.ModeList:
		reply = rt.service.ListAccessibleTables(ctx).String()

	case chat.ModeCommand:
		reply = x.runCommand(ctx, rt, message)

	case chat.ModeAgent:
		reply, err = x.runAgent(ctx, ssn, rt, message)

	case chat.ModeDirect:
		reply, err = x.runDirect(ctx, ssn, rt, message)

	default:
		return goerr.New("unsupported chat mode",
			goerr.V("mode", ssn.Mode.String()),
			goerr.TV(errs.SessionIDKey, ssn.ID.String()),
			goerr.T(errs.TagValidation))
	}

	if err != nil {
		msg.Notify(ctx, "💥 Execution failed: %s", err.Error())
		x.record(ctx, ssn, chat.RoleAssistant, "💥 Execution failed: "+err.Error())
		return err
	}

	if reply != "" {
		msg.Notify(ctx, "%s", reply)
		x.record(ctx, ssn, chat.RoleAssistant, reply)
	}

	ssn.Touch(ctx)
	if err := x.repository.PutSession(ctx, ssn); err != nil {
		errs.Handle(ctx, goerr.Wrap(err, "failed to update chat session", goerr.TV(errs.SessionIDKey, ssn.ID.String())))
	}

	return nil
}

func echo(message string) string {
	return "You said: " + message
}

func (x *UseCases) runCommand(ctx context.Context, rt *runtime, message string) string {
	cmd := command.Parse(message)
	logging.From(ctx).Debug("command parsed", "kind", cmd.Kind.String(), "argument", cmd.Argument)

	switch cmd.Kind {
	case command.KindDescribe:
		msg.Trace(ctx, "🔍 Describing `%s`", cmd.Argument)
		return rt.service.DescribeTable(ctx, cmd.Argument).String()
	case command.KindExecute:
		msg.Trace(ctx, "⏳ Running query")
		return rt.service.ExecuteQuery(ctx, cmd.Argument).String()
	case command.KindListTables:
		return rt.service.ListAccessibleTables(ctx).String()
	case command.KindListSchemas:
		return rt.service.ListAccessibleTables(ctx).Overview()
	case command.KindHelp:
		return command.HelpMessage
	default:
		return echo(cmd.Argument)
	}
}

func (x *UseCases) profilePrompt(rt *runtime) string {
	if rt.profile.SystemPrompt != "" {
		return rt.profile.SystemPrompt
	}
	return x.systemPrompt
}

func (x *UseCases) runAgent(ctx context.Context, ssn *chat.Session, rt *runtime, message string) (string, error) {
	logger := logging.From(ctx)

	toolPrompt, err := rt.tool.Prompt(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build tool prompt")
	}
	systemPrompt := x.profilePrompt(rt) + "\n\n" + toolPrompt

	agentOpts := []gollem.Option{
		gollem.WithToolSets(rt.tool),
		gollem.WithSystemPrompt(systemPrompt),
		gollem.WithLogger(logger),
		gollem.WithToolMiddleware(func(next gollem.ToolHandler) gollem.ToolHandler {
			return func(ctx context.Context, req *gollem.ToolExecRequest) (*gollem.ToolExecResponse, error) {
				trace := fmt.Sprintf("🔸 *Tool:* `%s`", req.Tool.Name)
				msg.Trace(ctx, "%s", trace)
				x.record(ctx, ssn, chat.RoleTrace, trace)
				logger.Debug("execute tool", "tool", req.Tool.Name, "args", req.Tool.Arguments)

				resp, err := next(ctx, req)

				if resp != nil && resp.Error != nil {
					msg.Trace(ctx, "❌ *Error:* %s", resp.Error.Error())
					logger.Error("tool error", "error", resp.Error, "call", req.Tool)
				}
				return resp, err
			}
		}),
	}
	if rt.history != nil {
		agentOpts = append(agentOpts, gollem.WithHistory(rt.history))
	}

	agent := gollem.New(x.llmClient, agentOpts...)
	result, err := agent.Execute(ctx, gollem.Text(message))
	if err != nil {
		return "", goerr.Wrap(err, "failed to execute agent", goerr.T(errs.TagLLMError))
	}

	if session := agent.Session(); session != nil {
		history, err := session.History()
		if err != nil {
			logger.Warn("failed to get history from agent session", logging.ErrAttr(err))
		} else {
			x.keepHistory(ctx, ssn, rt, history)
		}
	}

	if result == nil || result.IsEmpty() {
		return "", nil
	}
	return result.String(), nil
}

func (x *UseCases) runDirect(ctx context.Context, ssn *chat.Session, rt *runtime, message string) (string, error) {
	opts := []gollem.SessionOption{
		gollem.WithSessionSystemPrompt(x.profilePrompt(rt)),
	}
	if rt.history != nil {
		opts = append(opts, gollem.WithSessionHistory(rt.history))
	}

	session, err := x.llmClient.NewSession(ctx, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session", goerr.T(errs.TagLLMError))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(message))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content", goerr.T(errs.TagLLMError))
	}

	history, err := session.History()
	if err != nil {
		logging.From(ctx).Warn("failed to get history from LLM session", logging.ErrAttr(err))
	} else {
		x.keepHistory(ctx, ssn, rt, history)
	}

	return strings.Join(resp.Texts, "\n"), nil
}

func (x *UseCases) keepHistory(ctx context.Context, ssn *chat.Session, rt *runtime, history *gollem.History) {
	if history == nil {
		return
	}
	rt.history = history

	// Other versions cannot be decoded when the session is restored.
	if x.historyStorage == nil || history.Version != gollem.HistoryVersion {
		return
	}
	if err := x.historyStorage.PutHistory(ctx, ssn.ID, history); err != nil {
		errs.Handle(ctx, goerr.Wrap(err, "failed to save chat history", goerr.TV(errs.SessionIDKey, ssn.ID.String())))
	}
}
